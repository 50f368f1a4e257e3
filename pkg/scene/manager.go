package scene

import (
	"errors"
	"fmt"
	"log"

	"github.com/decker502/scrollscene/pkg/config"
	"github.com/decker502/scrollscene/pkg/frame"
	"github.com/decker502/scrollscene/pkg/page"
	"github.com/decker502/scrollscene/pkg/scroll"
)

// Manager 管理一个页面的所有场景
// 按页面顺序挂载场景，让固定间距与布局保持同步，并停用远离视口的场景
type Manager struct {
	deps    Deps
	doc     *page.Document
	handles []*Handle
	byName  map[string]*Handle

	visibility frame.Token
	cullMargin float64
}

// NewManager 为 doc 创建场景管理器
// deps.Layout 会被设置为 doc
func NewManager(deps Deps, doc *page.Document) *Manager {
	deps.Layout = doc
	m := &Manager{
		deps:       deps,
		doc:        doc,
		byName:     make(map[string]*Handle),
		cullMargin: 1,
	}
	if deps.Loop != nil {
		m.visibility = deps.Loop.Register(frame.PhaseBinding, m.updateVisibility)
	}
	return m
}

// Document 返回被管理的页面
func (m *Manager) Document() *page.Document {
	return m.doc
}

// Deps 返回挂载场景时使用的依赖
func (m *Manager) Deps() Deps {
	return m.deps
}

// SetCullMargin 设置场景区块周围多少个视口高度内保持激活（默认 1）
// 小于等于 0 时关闭剔除
func (m *Manager) SetCullMargin(viewports float64) {
	m.cullMargin = viewports
}

// Mount 挂载单个场景并重新布局
func (m *Manager) Mount(name string, setup SetupFunc) (*Handle, error) {
	if _, exists := m.byName[name]; exists {
		return nil, fmt.Errorf("%w: scene %q already mounted", ErrLifecycleMisuse, name)
	}
	h, err := Mount(name, m.deps, setup)
	if err != nil {
		return nil, err
	}
	m.handles = append(m.handles, h)
	m.byName[name] = h
	if err := m.Relayout(); err != nil {
		log.Printf("[SceneManager] relayout after mounting %s: %v", name, err)
	}
	return h, nil
}

// MountPage 挂载 cfg 中的所有场景
// 挂载失败的场景记录日志后跳过，其余场景挂载完成后返回合并的错误
func (m *Manager) MountPage(cfg *config.PageConfig) error {
	if s := m.deps.Smoother; s != nil {
		s.SetLerp(cfg.Smoothing.Lerp)
	}
	if cfg.Tracker.MaxVelocity > 0 || cfg.Tracker.DeadZone > 0 {
		maxV, dead := cfg.Tracker.MaxVelocity, cfg.Tracker.DeadZone
		if maxV <= 0 {
			maxV = scroll.DefaultMaxVelocity
		}
		if dead <= 0 {
			dead = scroll.DefaultDeadZone
		}
		m.deps.Tracker.SetLimits(maxV, dead)
	}

	var errs []error
	for _, sc := range cfg.Scenes {
		h, err := Mount(sc.Name, m.deps, FromConfig(sc))
		if err != nil {
			log.Printf("[SceneManager] scene %s not mounted: %v", sc.Name, err)
			errs = append(errs, err)
			continue
		}
		m.handles = append(m.handles, h)
		m.byName[sc.Name] = h
	}
	if err := m.Relayout(); err != nil {
		log.Printf("[SceneManager] %v", err)
	}
	log.Printf("[SceneManager] page %s: %d/%d scenes mounted", cfg.Name, len(m.handles), len(cfg.Scenes))
	return errors.Join(errs...)
}

// Scene 按名称返回已挂载的场景，不存在时返回 nil
func (m *Manager) Scene(name string) *Handle {
	return m.byName[name]
}

// Scenes 按挂载顺序返回所有场景
func (m *Manager) Scenes() []*Handle {
	return m.handles
}

// Relayout 重新计算布局
// 先清空固定间距，再按页面顺序让每个场景解析触发器并加入自己的固定间距（后续区块随之下移）
// 解析错误会被合并返回，页面仍然可用
func (m *Manager) Relayout() error {
	m.doc.ClearSpacing()

	var errs []error
	for _, h := range m.handles {
		if err := h.Relayout(m.doc); err != nil {
			errs = append(errs, fmt.Errorf("scene %s: %w", h.Name(), err))
		}
		for triggerName, spacing := range h.PinSpacing() {
			section, ok := m.doc.SectionName(triggerName)
			if !ok {
				continue
			}
			m.doc.SetSpacing(section, m.sectionSpacing(section)+spacing)
		}
	}

	if s := m.deps.Smoother; s != nil {
		s.SetLimit(m.doc.ScrollLimit())
	}
	return errors.Join(errs...)
}

func (m *Manager) sectionSpacing(name string) float64 {
	for _, s := range m.doc.Sections() {
		if s.Name == name {
			return s.Spacing
		}
	}
	return 0
}

// Resize 修改视口尺寸并重新布局
func (m *Manager) Resize(width, height float64) error {
	m.doc.SetViewport(width, height)
	return m.Relayout()
}

// Dispose 销毁并移除单个场景
func (m *Manager) Dispose(name string) {
	h, ok := m.byName[name]
	if !ok {
		return
	}
	h.Dispose()
	delete(m.byName, name)
	for i, other := range m.handles {
		if other == h {
			m.handles = append(m.handles[:i:i], m.handles[i+1:]...)
			break
		}
	}
	if err := m.Relayout(); err != nil {
		log.Printf("[SceneManager] relayout after disposing %s: %v", name, err)
	}
}

// DisposeAll 按挂载的逆序销毁所有场景
// 管理器之后仍可用于新页面
func (m *Manager) DisposeAll() {
	for i := len(m.handles) - 1; i >= 0; i-- {
		m.handles[i].Dispose()
	}
	m.handles = nil
	m.byName = make(map[string]*Handle)
	m.doc.ClearSpacing()
}

// Close 销毁所有场景并停止可见性跟踪
func (m *Manager) Close() {
	m.DisposeAll()
	if m.deps.Loop != nil && m.visibility != 0 {
		m.deps.Loop.Cancel(m.visibility)
		m.visibility = 0
	}
}

// updateVisibility 激活所属区块位于视口剔除范围内的场景
func (m *Manager) updateVisibility(_ float64, state scroll.State) {
	if m.cullMargin <= 0 {
		return
	}
	vh := m.doc.ViewportHeight()
	margin := vh * m.cullMargin
	for _, h := range m.handles {
		if h.scope == "" {
			continue
		}
		var visible bool
		for _, s := range m.doc.Sections() {
			if s.Name != h.scope {
				continue
			}
			top := s.Y - margin
			bottom := s.Y + s.Height + s.Spacing + margin
			visible = state.Offset+vh >= top && state.Offset <= bottom
		}
		if visible != h.Active() {
			_ = h.SetActive(visible)
		}
	}
}
