package chart

// Kind identifies the shape of a Primitive.
type Kind uint8

const (
	KindFill Kind = iota
	KindLine
	KindCircle
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindFill:
		return "fill"
	case KindLine:
		return "line"
	case KindCircle:
		return "circle"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Role tells the host what part of the chart a primitive belongs to.
type Role uint8

const (
	RoleBackground Role = iota
	RoleGrid
	RoleAxis
	RoleTick
	RoleTickLabel
	RoleAxisTitle
	RoleSeriesLine
	RoleSeriesMarker
	RoleLegendSwatch
	RoleLegendLabel
	RoleNoData
)

// Align is the horizontal anchoring of text.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
)

// Primitive is one draw instruction. Which fields are meaningful depends
// on Kind:
//
//	KindFill:   Rect
//	KindLine:   From, To, Width
//	KindCircle: From (centre), Radius
//	KindText:   From (anchor), Text, Size, Align
type Primitive struct {
	Kind   Kind
	Role   Role
	Color  Color
	Rect   Rect
	From   Point
	To     Point
	Width  float64
	Radius float64
	Text   string
	Size   float64
	Align  Align
	// Series is the index of the owning series, or -1.
	Series int
}

func fill(role Role, r Rect, c Color) Primitive {
	return Primitive{Kind: KindFill, Role: role, Rect: r, Color: c, Series: -1}
}

func line(role Role, from, to Point, c Color, width float64) Primitive {
	return Primitive{Kind: KindLine, Role: role, From: from, To: to, Color: c, Width: width, Series: -1}
}

func circle(role Role, center Point, radius float64, c Color) Primitive {
	return Primitive{Kind: KindCircle, Role: role, From: center, Radius: radius, Color: c, Series: -1}
}

func text(role Role, at Point, s string, c Color, size float64, align Align) Primitive {
	return Primitive{Kind: KindText, Role: role, From: at, Text: s, Color: c, Size: size, Align: align, Series: -1}
}

func (p Primitive) forSeries(i int) Primitive {
	p.Series = i
	return p
}
