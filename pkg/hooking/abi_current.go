//go:build !hostabi_legacy

package hooking

// FileNameArg is the file-name parameter of ErrorCallback: a string handle.
type FileNameArg = *HostString

func fileNameView(f FileNameArg) string {
	return f.View()
}
