package uploads

import (
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// DetectImage inspects the leading bytes and returns TypePNG or TypeJPEG.
// ok is false for anything else, whatever the client claimed.
func DetectImage(data []byte) (contentType string, ok bool) {
	return imageType(mimetype.Detect(data))
}

// DetectImageReader is DetectImage over a reader. It consumes up to the
// detector's read limit; callers that need the content must rewind.
func DetectImageReader(r io.Reader) (string, bool, error) {
	m, err := mimetype.DetectReader(r)
	if err != nil {
		return "", false, err
	}
	ct, ok := imageType(m)
	return ct, ok, nil
}

func imageType(m *mimetype.MIME) (string, bool) {
	switch {
	case m.Is(TypePNG):
		return TypePNG, true
	case m.Is(TypeJPEG):
		return TypeJPEG, true
	default:
		return "", false
	}
}
