package entity

import (
	"image"
	"math"
)

// Contour замкнутый контур связной области маски.
type Contour []image.Point

// Area площадь по формуле шнурования (всегда неотрицательная).
func (c Contour) Area() float64 {
	if len(c) < 3 {
		return 0
	}
	var sum int
	for i := range c {
		p, q := c[i], c[(i+1)%len(c)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}

// Perimeter длина замкнутой ломаной.
func (c Contour) Perimeter() float64 {
	if len(c) < 2 {
		return 0
	}
	var total float64
	for i := range c {
		p, q := c[i], c[(i+1)%len(c)]
		total += math.Hypot(float64(q.X-p.X), float64(q.Y-p.Y))
	}
	return total
}

// Circularity 4π·S/P². Для вырожденного контура (P = 0) возвращает ok = false.
func (c Contour) Circularity() (value float64, ok bool) {
	perimeter := c.Perimeter()
	if perimeter == 0 {
		return 0, false
	}
	return 4 * math.Pi * c.Area() / (perimeter * perimeter), true
}

// IsAlgae решает, считать ли контур частицей водорослей.
// Границы площади исключаются, почти круглые формы отдаются пузырькам.
func (c Contour) IsAlgae(p AnalysisParams) bool {
	area := c.Area()
	if area <= p.AlgaeMinArea || area >= p.AlgaeMaxArea {
		return false
	}
	circularity, ok := c.Circularity()
	if !ok {
		return false
	}
	return circularity < p.AlgaeMaxCircularity
}

// FilterAlgae оставляет только контуры, прошедшие IsAlgae.
func FilterAlgae(contours []Contour, p AnalysisParams) []Contour {
	accepted := make([]Contour, 0, len(contours))
	for _, c := range contours {
		if c.IsAlgae(p) {
			accepted = append(accepted, c)
		}
	}
	return accepted
}
