package cli

import "strings"

// resolveSessionID expands an id prefix. An empty argument means the
// active session.
func resolveSessionID(app *App, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return app.Sessions.Active().ID, nil
	}
	return app.Sessions.ResolveID(input)
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
