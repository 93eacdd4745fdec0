package scan

import "errors"

// ErrNoImage is returned when Identify is called with no image bytes.
var ErrNoImage = errors.New("no image provided")

// ErrImageDecode is returned when the scanned photo itself cannot be decoded,
// which makes visual comparison impossible.
var ErrImageDecode = errors.New("image decode failed")
