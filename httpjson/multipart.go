package httpjson

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/programme-lv/autograde/srvcerror"
)

const ErrCodeMultipartInvalid = "multipart_invalid"

// MaxUploadBytes caps a single multipart request.
const MaxUploadBytes = 32 << 20

func ParseMultipart(r *http.Request) error {
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		return srvcerror.New(ErrCodeMultipartInvalid,
			"failed to parse multipart form (maybe a file is too large?)").
			SetHttpStatusCode(http.StatusBadRequest).
			SetDebug(err)
	}
	return nil
}

// FormFile reads an uploaded file. A missing optional file yields ok == false.
func FormFile(r *http.Request, field string, required bool) (name string, content []byte, ok bool, err error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		if required {
			return "", nil, false, srvcerror.ErrInvalidRequest(fmt.Sprintf("file %s is required", field))
		}
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, srvcerror.ErrInvalidRequest(fmt.Sprintf("failed to read file %s", field)).SetDebug(err)
	}
	defer f.Close()

	content, err = io.ReadAll(f)
	if err != nil {
		return "", nil, false, fmt.Errorf("failed to read upload %s: %w", field, err)
	}
	return header.Filename, content, true, nil
}
