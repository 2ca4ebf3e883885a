package request

import (
	"fmt"
	"strings"

	"github.com/strongdm/apmcore/pkg/callstack"
)

// tracer is implemented by engines able to list the executing frames.
type tracer interface {
	Trace(limit int) []callstack.Site
}

// formatTrace renders sites innermost first, one frame per line:
//
//	#0 PDO::query() called at [/srv/app/db.php:12]
func formatTrace(sites []callstack.Site) string {
	var b strings.Builder
	for i, site := range sites {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "#%d ", i)
		if site.Class != "" {
			b.WriteString(site.Class)
			b.WriteString("::")
		}
		if site.Function != "" {
			b.WriteString(site.Function)
		} else {
			b.WriteString("{main}")
		}
		b.WriteString("()")
		if site.File != "" {
			fmt.Fprintf(&b, " called at [%s:%d]", site.File, site.Line)
		}
	}
	return b.String()
}
