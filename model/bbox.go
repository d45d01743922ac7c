package model

import (
	"fmt"
)

const (
	MaxLat Degrees = 90.0
	MaxLon Degrees = 180.0
	MinLat Degrees = -90.0
	MinLon Degrees = -180.0
)

// BoundingBox is a geographic bounding box in decimal degrees.
type BoundingBox struct {
	Top    Degrees
	Left   Degrees
	Bottom Degrees
	Right  Degrees
}

// InitialBoundingBox creates a BoundingBox that is meant to be expanded.
func InitialBoundingBox() *BoundingBox {
	return &BoundingBox{
		Top:    MinLat,
		Left:   MaxLon,
		Bottom: MaxLat,
		Right:  MinLon,
	}
}

// EqualWithin checks if two bounding boxes are within a specific epsilon.
func (b *BoundingBox) EqualWithin(o *BoundingBox, eps Epsilon) bool {
	return b.Left.EqualWithin(o.Left, eps) &&
		b.Right.EqualWithin(o.Right, eps) &&
		b.Top.EqualWithin(o.Top, eps) &&
		b.Bottom.EqualWithin(o.Bottom, eps)
}

// Contains checks if the bounding box contains the point.
func (b *BoundingBox) Contains(p GeoPoint) bool {
	return b.Left <= p.Lon && p.Lon <= b.Right && b.Bottom <= p.Lat && p.Lat <= b.Top
}

// Center returns the geographic center of the box.
func (b *BoundingBox) Center() GeoPoint {
	return GeoPoint{
		Lon: (b.Left + b.Right) / 2,
		Lat: (b.Top + b.Bottom) / 2,
	}
}

func (b *BoundingBox) ExpandWithPoint(p GeoPoint) {
	if b.Top < p.Lat {
		b.Top = p.Lat
	}

	if b.Bottom > p.Lat {
		b.Bottom = p.Lat
	}

	if b.Left > p.Lon {
		b.Left = p.Lon
	}

	if b.Right < p.Lon {
		b.Right = p.Lon
	}
}

func (b *BoundingBox) ExpandWithBoundingBox(bbox *BoundingBox) {
	if b.Top < bbox.Top {
		b.Top = bbox.Top
	}

	if b.Bottom > bbox.Bottom {
		b.Bottom = bbox.Bottom
	}

	if b.Left > bbox.Left {
		b.Left = bbox.Left
	}

	if b.Right < bbox.Right {
		b.Right = bbox.Right
	}
}

func (b *BoundingBox) String() string {
	return fmt.Sprintf("[(%s, %s) (%s, %s)]",
		ftoa(float64(b.Top)), ftoa(float64(b.Left)),
		ftoa(float64(b.Bottom)), ftoa(float64(b.Right)))
}
