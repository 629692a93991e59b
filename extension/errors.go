package extension

import (
	"fmt"
	"net/http"

	"github.com/programme-lv/autograde/srvcerror"
)

const ErrCodeExtensionDaysInvalid = "extension_days_invalid"

func newErrDaysInvalid() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeExtensionDaysInvalid,
		"extension must be at least one day",
	).SetHttpStatusCode(http.StatusBadRequest)
}

const ErrCodeExtensionExceedsAllowance = "extension_exceeds_allowance"

func newErrExceedsAllowance(left int) *srvcerror.Error {
	if left < 0 {
		left = 0
	}
	return srvcerror.New(
		ErrCodeExtensionExceedsAllowance,
		fmt.Sprintf("only %d extension days left for this course", left),
	).SetHttpStatusCode(http.StatusConflict)
}
