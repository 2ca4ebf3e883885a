//go:build hostabi_legacy

package hooking

// FileNameArg is the file-name parameter of ErrorCallback: engines built
// before string handles pass a raw NUL-terminated buffer.
type FileNameArg = CString

func fileNameView(f FileNameArg) string {
	return f.View()
}
