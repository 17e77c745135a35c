package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color       bool
	Context     int // строк исходника вокруг основной, 0 - только она
	Width       int // максимальная ширина строки исходника, 0 - не ограничено
	ShowDetails bool
	ShowFixes   bool
	ShowPreview bool
	Max         int // обрезка вывода; 0 - без обрезки
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	Max              int  // обрезка вывода; 0 - без обрезки
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InformationURI string
	InvocationArgs []string
}
