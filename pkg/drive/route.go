package drive

import (
	"fmt"
	"strings"
)

// Separator terminates every segment of a folder route.
const Separator = "/"

// RouteError reports a route that cannot be decomposed into segments, or a
// segment name that would corrupt a route if spliced into one.
type RouteError struct {
	// Route is the offending route
	Route string

	// Reason describes what is wrong with it
	Reason string
}

// Error implements the error interface.
func (e *RouteError) Error() string {
	return fmt.Sprintf("malformed route %q: %s", e.Route, e.Reason)
}

// ValidName reports whether name can be used as a route segment: non-empty,
// free of the separator, and not one of the filesystem's relative segments,
// which would change what a route points at once mirrored onto a disk.
func ValidName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.Contains(name, Separator)
}

// RootRoute returns the route of an owner's root folder: "/<username>/".
func RootRoute(owner Owner) string {
	return Separator + owner.Username + Separator
}

// ChildRoute appends childName as the new final segment of parentRoute.
func ChildRoute(parentRoute, childName string) string {
	return parentRoute + childName + Separator
}

// FileRoute places filename directly inside folderRoute. File routes carry
// no trailing separator.
func FileRoute(folderRoute, filename string) string {
	return folderRoute + filename
}

// Segments decomposes a folder route into its ordered segment names.
// Folder routes are separator-wrapped ("/a/b/"); anything else is rejected.
func Segments(route string) ([]string, error) {
	if len(route) < 2 || !strings.HasPrefix(route, Separator) || !strings.HasSuffix(route, Separator) {
		return nil, &RouteError{Route: route, Reason: "folder routes are separator-wrapped, like /a/b/"}
	}

	segments := strings.Split(route[1:len(route)-1], Separator)
	for _, segment := range segments {
		if segment == "" {
			return nil, &RouteError{Route: route, Reason: "empty segment"}
		}
	}
	return segments, nil
}

// FileSegments decomposes a file route into its ordered segment names, the
// last one being the filename. File routes start with the separator and do
// not end with it ("/a/b/name.ext").
func FileSegments(route string) ([]string, error) {
	if len(route) < 2 || !strings.HasPrefix(route, Separator) || strings.HasSuffix(route, Separator) {
		return nil, &RouteError{Route: route, Reason: "file routes look like /a/b/name.ext"}
	}

	segments := strings.Split(route[1:], Separator)
	for _, segment := range segments {
		if segment == "" {
			return nil, &RouteError{Route: route, Reason: "empty segment"}
		}
	}
	return segments, nil
}

// Join assembles segment names back into a separator-wrapped folder route.
func Join(segments []string) string {
	return Separator + strings.Join(segments, Separator) + Separator
}

// RenamedRoute replaces the final segment of oldRoute with newName,
// preserving every ancestor segment: RenamedRoute("/a/b/", "c") == "/a/c/".
//
// The function is pure. Callers performing successive renames must thread
// the updated route through; recomputing from a stale route yields a result
// that no longer matches where the folder actually sits.
func RenamedRoute(oldRoute, newName string) (string, error) {
	if !ValidName(newName) {
		return "", &RouteError{Route: oldRoute, Reason: fmt.Sprintf("invalid segment name %q", newName)}
	}

	segments, err := Segments(oldRoute)
	if err != nil {
		return "", err
	}
	segments[len(segments)-1] = newName
	return Join(segments), nil
}

// ChildFileRoute recomputes the route of a file inside a folder whose route
// changed from oldFolderRoute to newFolderRoute. The rewrite is positional:
// the file route must descend from oldFolderRoute segment by segment, and
// only the folder prefix is replaced, so a folder name that also occurs
// elsewhere in the path (or inside the filename) can never corrupt the
// result. The filename is preserved verbatim.
func ChildFileRoute(oldFolderRoute, newFolderRoute, oldFileRoute string) (string, error) {
	oldFolder, err := Segments(oldFolderRoute)
	if err != nil {
		return "", err
	}
	newFolder, err := Segments(newFolderRoute)
	if err != nil {
		return "", err
	}
	file, err := FileSegments(oldFileRoute)
	if err != nil {
		return "", err
	}

	if len(newFolder) != len(oldFolder) {
		return "", &RouteError{Route: newFolderRoute, Reason: "renames preserve depth, old and new folder routes differ"}
	}
	if len(file) <= len(oldFolder) {
		return "", &RouteError{Route: oldFileRoute, Reason: "file route does not descend from " + oldFolderRoute}
	}
	for i, segment := range oldFolder {
		if file[i] != segment {
			return "", &RouteError{Route: oldFileRoute, Reason: "file route does not descend from " + oldFolderRoute}
		}
	}

	remainder := file[len(oldFolder):]
	return Join(newFolder) + strings.Join(remainder, Separator), nil
}
