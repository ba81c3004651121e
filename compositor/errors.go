package compositor

import "fmt"

// NotFoundError reports a head or body key whose backing sheet does not
// exist. An explicitly empty key is not an error; it stands for "no part".
type NotFoundError struct {
	Part string // "head" or "body"
	Key  string
	Path string // resolved path, empty if the key was never registered
}

func (e *NotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s sheet %q is not registered", e.Part, e.Key)
	}
	return fmt.Sprintf("%s sheet %q not found at %s", e.Part, e.Key, e.Path)
}

// DecodeError reports a sheet file that exists but could not be decoded.
type DecodeError struct {
	Part string
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s sheet %s is not a readable image: %v", e.Part, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
