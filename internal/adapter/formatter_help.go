package adapter

type helpTemplateData struct {
	AIEnabled bool
}

// FormatHelp: 도움말 메시지를 생성한다.
func (f *ResponseFormatter) FormatHelp() Response {
	rendered, err := executeFormatterTemplate("help.tmpl", helpTemplateData{AIEnabled: f.AIEnabled()})
	if err != nil {
		return f.FormatError(ErrDisplayHelpFailed)
	}
	return TextResponse(rendered)
}
