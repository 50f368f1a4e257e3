package systems

import (
	"bytes"
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// FontCache 缓存内置 Go Regular 字体的字形，每个整数像素尺寸一份
type FontCache struct {
	source *text.GoTextFaceSource
	faces  map[int]*text.GoTextFace
}

// NewFontCache 解析内置字体
func NewFontCache() (*FontCache, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("failed to create font source: %w", err)
	}
	return &FontCache{source: source, faces: make(map[int]*text.GoTextFace)}, nil
}

// Face 返回指定尺寸的字形
// 尺寸四舍五入到整数像素，最小为 6
func (c *FontCache) Face(size float64) *text.GoTextFace {
	key := int(math.Round(size))
	if key < 6 {
		key = 6
	}
	if face, ok := c.faces[key]; ok {
		return face
	}
	face := &text.GoTextFace{
		Source:    c.source,
		Size:      float64(key),
		Direction: text.DirectionLeftToRight,
	}
	c.faces[key] = face
	return face
}
