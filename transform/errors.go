package transform

import "github.com/jaylikesbunda/packr/errs"

func errTruncated(what string) error {
	return errs.New(errs.MalformedInput, "truncated %s", what)
}

func errBadMarker(b byte) error {
	return errs.New(errs.MalformedInput, "unrecognized outer transform marker 0x%02X", b)
}

func errInvalidBackref() error {
	return errs.New(errs.MalformedInput, "lz77 back-reference points before start of output")
}
