package utils

import (
	"strings"

	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func GenerateID() string {
	id, err := gonanoid.Generate(idAlphabet, 10)
	if err != nil {
		return ""
	}
	return id
}

// GenerateBookingRef returns "<slug(title)>-<id>", or "booking-<id>" when the
// title has no usable characters.
func GenerateBookingRef(title string) string {
	s := slug.Make(title)
	if len(s) > 40 {
		s = strings.Trim(s[:40], "-")
	}
	if s == "" {
		s = "booking"
	}
	return s + "-" + GenerateID()
}
