// cmd/lockblock/templates.go
package main

import "github.com/urfave/cli/v2"

// RussianHelpTemplate содержит русский шаблон справки приложения
const RussianHelpTemplate = `НАЗВАНИЕ:
   {{template "helpNameTemplate" .}}

ИСПОЛЬЗОВАНИЕ:
   {{if .UsageText}}{{wrap .UsageText 3}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[ПАРАМЕТРЫ]{{end}}{{if .Commands}} КОМАНДА [АРГУМЕНТЫ_КОМАНДЫ...]{{end}}{{end}}

{{if .Version}}{{if not .HideVersion}}ВЕРСИЯ:
   {{.Version}}
{{end}}{{end}}{{if .Description}}ОПИСАНИЕ:
   {{template "descriptionTemplate" .}}
{{end}}{{if len .Authors}}АВТОР{{with $length := len .Authors}}{{if ne 1 $length}}Ы{{end}}{{end}}:
   {{range $index, $author := .Authors}}{{if $index}}
   {{end}}{{$author}}{{end}}
{{end}}{{if .VisibleCommands}}КОМАНДЫ:{{range .VisibleCategories}}{{if .Name}}
   {{.Name}}:{{range .VisibleCommands}}
     {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{else}}{{range .VisibleCommands}}
   {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{end}}{{end}}

{{end}}{{if .VisibleFlags}}ПАРАМЕТРЫ:
{{range $index, $flag := .VisibleFlags}}   {{$flag}}
{{end}}{{end}}`

// RussianCommandHelpTemplate содержит русский шаблон справки команды
const RussianCommandHelpTemplate = `НАЗВАНИЕ:
   {{template "helpNameTemplate" .}}

ИСПОЛЬЗОВАНИЕ:
   {{if .UsageText}}{{wrap .UsageText 3}}{{else}}{{.HelpName}}{{if .VisibleFlags}} [ПАРАМЕТРЫ_КОМАНДЫ]{{end}}{{end}}{{if .Description}}

ОПИСАНИЕ:
   {{template "descriptionTemplate" .}}{{end}}{{if .VisibleFlags}}

ПАРАМЕТРЫ:
{{range .VisibleFlags}}   {{.}}
{{end}}{{end}}`

// setupRussianTemplates подменяет шаблоны справки urfave/cli
func setupRussianTemplates() {
	cli.AppHelpTemplate = RussianHelpTemplate
	cli.CommandHelpTemplate = RussianCommandHelpTemplate
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "показать версию",
	}
	cli.HelpFlag = &cli.BoolFlag{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   "показать справку",
	}
}
