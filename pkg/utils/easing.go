package utils

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Easing Functions (缓动函数)
//
// 缓动函数用于控制动画的速度曲线。
// 所有函数接受一个进度值 t ∈ [0, 1]，满足 f(0)=0、f(1)=1。
// 页面配置里使用常见的网页补间命名（"power2.out", "sine.inOut", "none"）。
//
// 参考：https://easings.net/

// EasingFunc 把线性进度映射为缓动后的进度
type EasingFunc func(t float64) float64

// ErrUnknownEasing ParseEasing 遇到未知名称时返回
var ErrUnknownEasing = errors.New("unknown easing")

// EaseLinear 线性缓动（无缓动）
// 返回值 = 输入值（匀速运动）
func EaseLinear(t float64) float64 {
	return t
}

// EaseOutCubic 三次方缓出
// 特点：开始快，结束慢
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// EaseInCubic 三次方缓入
// 特点：开始慢，结束快
// 公式：f(t) = t³
func EaseInCubic(t float64) float64 {
	return t * t * t
}

// EaseInOutCubic 三次方缓入缓出，两端慢
//
//	t < 0.5: f(t) = 4t³
//	t >= 0.5: f(t) = 1 - (-2t + 2)³ / 2
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// EaseOutQuad 二次方缓出，比 EaseOutCubic 柔和
// 公式：f(t) = 1 - (1-t)²
func EaseOutQuad(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

// EaseInQuad 二次方缓入 f(t) = t²
func EaseInQuad(t float64) float64 {
	return t * t
}

// EaseOutExpo 指数缓出 f(t) = 1 - 2^(-10t)
func EaseOutExpo(t float64) float64 {
	if t >= 1.0 {
		return 1.0
	}
	return 1 - math.Pow(2, -10*t)
}

// EaseInExpo 指数缓入 f(t) = 2^(10t-10)
func EaseInExpo(t float64) float64 {
	if t <= 0 {
		return 0
	}
	return math.Pow(2, 10*t-10)
}

// EaseInSine 正弦缓入 f(t) = 1 - cos(πt/2)
func EaseInSine(t float64) float64 {
	return 1 - math.Cos(t*math.Pi/2)
}

// EaseOutSine 正弦缓出 f(t) = sin(πt/2)
func EaseOutSine(t float64) float64 {
	return math.Sin(t * math.Pi / 2)
}

// EaseInOutSine 正弦缓入缓出 f(t) = -(cos(πt) - 1) / 2
func EaseInOutSine(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

// EaseOutBack 回弹缓出，先略微越过终点再回落
func EaseOutBack(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	return 1 + c3*math.Pow(t-1, 3) + c1*math.Pow(t-1, 2)
}

// PowerIn 返回 f(t) = t^(n+1)（"powerN.in"）
func PowerIn(n int) EasingFunc {
	exp := float64(n + 1)
	return func(t float64) float64 {
		return math.Pow(t, exp)
	}
}

// PowerOut 返回 f(t) = 1 - (1-t)^(n+1)（"powerN.out"）
func PowerOut(n int) EasingFunc {
	exp := float64(n + 1)
	return func(t float64) float64 {
		return 1 - math.Pow(1-t, exp)
	}
}

// PowerInOut 返回 n+1 次的对称缓入缓出曲线
func PowerInOut(n int) EasingFunc {
	exp := float64(n + 1)
	return func(t float64) float64 {
		if t < 0.5 {
			return math.Pow(2*t, exp) / 2
		}
		return 1 - math.Pow(-2*t+2, exp)/2
	}
}

var namedEasings = map[string]EasingFunc{
	"":               EaseLinear,
	"none":           EaseLinear,
	"linear":         EaseLinear,
	"sine.in":        EaseInSine,
	"sine.out":       EaseOutSine,
	"sine.inout":     EaseInOutSine,
	"expo.in":        EaseInExpo,
	"expo.out":       EaseOutExpo,
	"back.out":       EaseOutBack,
	"easeincubic":    EaseInCubic,
	"easeoutcubic":   EaseOutCubic,
	"easeinoutcubic": EaseInOutCubic,
	"easeinquad":     EaseInQuad,
	"easeoutquad":    EaseOutQuad,
}

// ParseEasing 按名称解析缓动函数（不区分大小写）
// 支持 "powerN.in|out|inOut"，N 取 0..4（power0 为线性）
// 单独的 "powerN" 等同于 "powerN.out"
func ParseEasing(name string) (EasingFunc, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if fn, ok := namedEasings[key]; ok {
		return fn, nil
	}

	if strings.HasPrefix(key, "power") {
		rest := strings.TrimPrefix(key, "power")
		var n int
		var kind string
		if dot := strings.IndexByte(rest, '.'); dot >= 0 {
			kind = rest[dot+1:]
			rest = rest[:dot]
		} else {
			kind = "out"
		}
		if _, err := fmt.Sscanf(rest, "%d", &n); err == nil && n >= 0 && n <= 4 && len(rest) == 1 {
			if n == 0 {
				return EaseLinear, nil
			}
			switch kind {
			case "in":
				return PowerIn(n), nil
			case "out":
				return PowerOut(n), nil
			case "inout":
				return PowerInOut(n), nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownEasing, name)
}

// Lerp 线性插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp 把 v 限制在 [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 把 v 限制在 [0, 1]，NaN 视为 0
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return Clamp(v, 0, 1)
}

// Frac 把 v 折回 [0, 1)
func Frac(v float64) float64 {
	f := v - math.Floor(v)
	if f >= 1 {
		return 0
	}
	return f
}
