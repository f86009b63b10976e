package daemon

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed optical.service.tmpl
var unitTemplate string

var unitTmpl = template.Must(template.New("unit").Parse(unitTemplate))

// UnitParams fill the systemd unit template.
type UnitParams struct {
	ExecPath   string
	ConfigPath string
	SocketPath string
}

// RenderUnit returns the systemd unit that runs the daemon with p.
func RenderUnit(p UnitParams) (string, error) {
	var buf bytes.Buffer
	if err := unitTmpl.Execute(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}
