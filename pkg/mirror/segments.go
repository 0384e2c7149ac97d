package mirror

import "github.com/codeSantiago/nospace/pkg/drive"

// DirectorySegments decomposes a folder route for mapping onto a physical
// backend, rejecting routes that do not decompose or that carry relative
// segments. Every implementation routes folder paths through here so the
// ErrInvalidPath contract is identical across backends.
func DirectorySegments(route string) ([]string, error) {
	segments, err := drive.Segments(route)
	if err != nil {
		return nil, &MirrorError{Code: ErrInvalidPath, Message: "not a folder route", Path: route}
	}
	if err := rejectRelative(route, segments); err != nil {
		return nil, err
	}
	return segments, nil
}

// FileSegments decomposes a file route with the same checks.
func FileSegments(route string) ([]string, error) {
	segments, err := drive.FileSegments(route)
	if err != nil {
		return nil, &MirrorError{Code: ErrInvalidPath, Message: "not a file route", Path: route}
	}
	if err := rejectRelative(route, segments); err != nil {
		return nil, err
	}
	return segments, nil
}

// rejectRelative refuses segments that would change what the route points
// at once joined into a backend path.
func rejectRelative(route string, segments []string) error {
	for _, segment := range segments {
		if segment == "." || segment == ".." {
			return &MirrorError{Code: ErrInvalidPath, Message: "route segment escapes the mirror root", Path: route}
		}
	}
	return nil
}
