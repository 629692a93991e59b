package bundle

import (
	"fmt"
	"net/http"

	"github.com/programme-lv/autograde/srvcerror"
)

const ErrCodeRunnerTemplateMissing = "runner_template_missing"

func newErrRunnerTemplateMissing() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeRunnerTemplateMissing,
		"grading bundle cannot be built: runner script template is missing",
	).SetHttpStatusCode(http.StatusInternalServerError)
}

const ErrCodeBundleInputMissing = "bundle_input_missing"

func newErrBundleInputMissing(name string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeBundleInputMissing,
		fmt.Sprintf("grading bundle cannot be built: %s is missing", name),
	).SetHttpStatusCode(http.StatusInternalServerError)
}
