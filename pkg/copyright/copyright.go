package copyright

import (
	"fmt"
	"io"
	"os"
	"strings"

	"robotconsole/pkg/version"

	"github.com/fatih/color"
)

var (
	titleColor   = color.New(color.FgHiCyan, color.Bold)
	versionColor = color.New(color.FgHiGreen)
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	defaultColor = color.New(color.FgWhite)
	numberColor  = color.New(color.FgHiYellow)
)

// SystemStatus 启动时展示的依赖状态
type SystemStatus struct {
	Version        string
	Addr           string
	Backend        string
	AuthEnabled    bool
	RedisStatus    bool
	MongoDBStatus  bool
	PostgresStatus bool
	JournalDir     string
	JournalHash    string
	RobotCount     int64
}

// Output 横幅输出目标
var Output io.Writer = os.Stdout

// PrintCopyright 打印启动横幅
func PrintCopyright(status SystemStatus) {
	w := Output
	printLogo(w)
	printFrame(w, status)
}

func printFrame(w io.Writer, status SystemStatus) {
	titleColor.Fprintln(w, "| System Information")
	defaultColor.Fprintln(w, "│")

	info := version.GetVersionInfo()
	defaultColor.Fprint(w, "│ Version    : ")
	versionColor.Fprintf(w, "%s", info.Version)
	if len(info.GitCommit) >= 8 {
		defaultColor.Fprint(w, " (")
		versionColor.Fprintf(w, "%s", info.GitCommit[:8])
		defaultColor.Fprint(w, ")")
	}
	defaultColor.Fprintf(w, " built at %s\n", info.BuildTime)
	defaultColor.Fprint(w, "│ Listen     : ")
	successColor.Fprintln(w, status.Addr)
	defaultColor.Fprint(w, "│ Backend    : ")
	successColor.Fprintln(w, status.Backend)
	defaultColor.Fprint(w, "│ Auth       : ")
	if status.AuthEnabled {
		successColor.Fprintln(w, "JWT")
	} else {
		warningColor.Fprintln(w, "disabled")
	}

	defaultColor.Fprintln(w, "│")
	defaultColor.Fprintln(w, "│ Storage")
	defaultColor.Fprint(w, "│ ⚡ Redis    : ")
	printStatus(w, status.RedisStatus, "in-memory pending files")
	defaultColor.Fprint(w, "│ ⚡ MongoDB  : ")
	printStatus(w, status.MongoDBStatus, "snapshots disabled")
	defaultColor.Fprint(w, "│ ⚡ Postgres : ")
	printStatus(w, status.PostgresStatus, "action history disabled")

	defaultColor.Fprintln(w, "│")
	defaultColor.Fprintln(w, "│ Journal")
	defaultColor.Fprint(w, "│ ⚡ Dir      : ")
	defaultColor.Fprintln(w, status.JournalDir)
	defaultColor.Fprint(w, "│ ⚡ Head     : ")
	if status.JournalHash == "" {
		warningColor.Fprintln(w, "empty")
	} else {
		numberColor.Fprintln(w, shortHash(status.JournalHash))
	}

	defaultColor.Fprintln(w, "│")
	defaultColor.Fprint(w, "│ ⚡ Robots   : ")
	numberColor.Fprintf(w, "%d\n", status.RobotCount)
	fmt.Fprintln(w)
}

func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16]
	}
	return h
}

func printStatus(w io.Writer, ok bool, fallback string) {
	if ok {
		successColor.Fprint(w, "Connected")
	} else {
		warningColor.Fprintf(w, "Disconnected (%s)", fallback)
	}
	fmt.Fprintln(w)
}

func printLogo(w io.Writer) {
	logo := `
     ____        __          __
    / __ \____  / /_  ____  / /_
   / /_/ / __ \/ __ \/ __ \/ __/
  / _, _/ /_/ / /_/ / /_/ / /_
 /_/ |_|\____/_.___/\____/\__/
`
	for _, line := range strings.Split(logo, "\n") {
		titleColor.Fprintln(w, line)
	}
}
