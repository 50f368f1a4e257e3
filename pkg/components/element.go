package components

// Rect 文档坐标系中的轴对齐矩形（像素，y 向下增长）
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Bottom 返回下边缘的 y 坐标
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// 渲染系统识别的元素类型
const (
	KindBox     = "box"
	KindText    = "text"
	KindLine    = "line"
	KindCircle  = "circle"
	KindSection = "section"
)

// ElementComponent 页面元素组件
// 保存选择器查询用的标识和布局矩形
// Local 相对所属区块，Rect 是每次重排后重新计算的文档坐标矩形
type ElementComponent struct {
	Name    string   // 唯一名称，匹配 "#name"
	Classes []string // 匹配 ".class"
	Section string   // 所属区块名称
	Kind    string
	Label   string // 可选文字，由宿主绘制
	Local   Rect
	Rect    Rect
}

// HasClass 判断元素是否带有指定 class
func (e *ElementComponent) HasClass(class string) bool {
	for _, c := range e.Classes {
		if c == class {
			return true
		}
	}
	return false
}
