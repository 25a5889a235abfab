package partition

import pkgerrors "github.com/solarflare-labs/vastore/pkg/errors"

func errShortFrame(what string) error {
	return pkgerrors.NewFormatError(nil, pkgerrors.ErrorCodeFormatMismatch, "truncated "+what)
}
