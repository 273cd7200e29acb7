package token

import "github.com/jaylikesbunda/packr/errs"

func errTruncated(what string) error {
	return errs.New(errs.MalformedInput, "truncated %s payload", what)
}

func errUnknown(b byte) error {
	return errs.New(errs.UnknownToken, "unrecognized token byte 0x%02X", b)
}

func errDictMiss(kind string, slot int) error {
	return errs.New(errs.DictionaryMiss, "%s dictionary slot %d never populated", kind, slot)
}

func errNoDeltaContext() error {
	return errs.New(errs.DeltaWithoutContext, "delta token with no field in scope or no prior absolute")
}
