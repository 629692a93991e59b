package assignment

import (
	"fmt"
	"net/http"

	"github.com/programme-lv/autograde/srvcerror"
)

const ErrCodeAssignmentNotFound = "assignment_not_found"

func newErrAssignmentNotFound() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeAssignmentNotFound,
		"assignment not found",
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeAssignmentTitleExists = "assignment_title_exists"

func newErrAssignmentTitleExists() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeAssignmentTitleExists,
		"this course already has an assignment with this title or its directory name",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeDuplicateFileName = "assignment_file_name_duplicate"

func newErrDuplicateFileName(name string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeDuplicateFileName,
		fmt.Sprintf("file name %q is used by more than one assignment file", name),
	).SetHttpStatusCode(http.StatusBadRequest)
}
