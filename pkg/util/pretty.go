package util

import (
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PrettyJSON marshals a value and returns it as indented JSON
func PrettyJSON(val interface{}) ([]byte, error) {
	buf, err := json.Marshal(val)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal value")
	}

	return pretty.Pretty(buf), nil
}

// PrettyPrint writes a value as indented JSON
func PrettyPrint(w io.Writer, val interface{}) error {
	buf, err := PrettyJSON(val)
	if err != nil {
		return err
	}

	_, err = w.Write(buf)

	return err
}
