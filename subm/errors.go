package subm

import (
	"net/http"

	"github.com/programme-lv/autograde/srvcerror"
)

const ErrCodeSubmissionNotFound = "submission_not_found"

func newErrSubmissionNotFound() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeSubmissionNotFound,
		"submission not found",
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeSubmissionNotZip = "submission_not_zip"

func newErrSubmissionNotZip(detected string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeSubmissionNotZip,
		"submission must be a zip archive, got "+detected,
	).SetHttpStatusCode(http.StatusBadRequest)
}

const ErrCodeSubmissionPassInvalid = "submission_pass_invalid"

func newErrSubmissionPassInvalid() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeSubmissionPassInvalid,
		"submission pass does not match",
	).SetHttpStatusCode(http.StatusForbidden)
}

const ErrCodeModifiableFileMissing = "modifiable_file_missing"

func newErrModifiableFileMissing(name string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeModifiableFileMissing,
		"submission does not contain "+name,
	).SetHttpStatusCode(http.StatusNotFound)
}
