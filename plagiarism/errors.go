package plagiarism

import (
	"net/http"

	"github.com/programme-lv/autograde/srvcerror"
)

const ErrCodeReportNotGenerated = "similarity_report_not_generated"

func NewErrReportNotGenerated() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeReportNotGenerated,
		"no similarity report has been generated for this assignment",
	).SetHttpStatusCode(http.StatusNotFound)
}
