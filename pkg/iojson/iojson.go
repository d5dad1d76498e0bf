// Package iojson reads and writes the JSON documents exchanged by classbell
// commands: notification lists, snapshots and event payloads.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// marshalFailure is written in place of a document that could not be encoded.
func marshalFailure(err error) string {
	errBytes, _ := json.Marshal(err.Error())
	return fmt.Sprintf(`{"message":"error marshaling in iojson.Write","data":{"json_error":%s}}`, errBytes)
}

// WriteWith writes obj to w as one indented document. Encoding failures are
// reported on ew as a JSON error document and are not returned.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		_, err = fmt.Fprintln(ew, marshalFailure(err))
		return err
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// WriteLine writes obj as one compact JSON line. ls, emit and watch use it so
// their output can be piped line by line.
func WriteLine(w io.Writer, obj any) error {
	return json.NewEncoder(w).Encode(obj)
}
