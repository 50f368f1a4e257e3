// Package embedded 提供编译进二进制的页面文件访问
//
// embed.FS 声明在模块根目录的 embed.go 中（go:embed 只能访问声明包之下的文件），
// main 在加载任何页面之前通过 Init 传入。
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/decker502/scrollscene/pkg/config"
)

// PagesDir 内置页面所在目录
const PagesDir = "data/pages"

var errNotInitialized = errors.New("embedded package not initialized, call Init() first")

var (
	dataFS      fs.FS
	initialized bool
)

// Init 设置嵌入文件系统，需在 main 开头调用
func Init(data fs.FS) {
	dataFS = data
	initialized = true
}

// IsInitialized 判断是否已调用 Init
func IsInitialized() bool {
	return initialized
}

func normalize(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(p), "./")
}

// ReadFile 读取内置文件，路径以 "data/" 开头
func ReadFile(p string) ([]byte, error) {
	if !initialized {
		return nil, errNotInitialized
	}
	return fs.ReadFile(dataFS, normalize(p))
}

// Exists 判断内置文件是否存在
func Exists(p string) bool {
	if !initialized {
		return false
	}
	_, err := fs.Stat(dataFS, normalize(p))
	return err == nil
}

// Glob 匹配内置文件
func Glob(pattern string) ([]string, error) {
	if !initialized {
		return nil, errNotInitialized
	}
	return fs.Glob(dataFS, normalize(pattern))
}

// Pages 返回排序后的内置页面名称
// 页面名称为去掉 .yaml 扩展名的文件名
func Pages() ([]string, error) {
	files, err := Glob(PagesDir + "/*.yaml")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(path.Base(f), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

// LoadPage 按名称解析内置页面
func LoadPage(name string) (*config.PageConfig, error) {
	p := path.Join(PagesDir, name+".yaml")
	data, err := ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled page %s: %w", name, err)
	}
	cfg, err := config.ParsePageConfig(data)
	if err != nil {
		return nil, fmt.Errorf("bundled page %s: %w", name, err)
	}
	return cfg, nil
}
