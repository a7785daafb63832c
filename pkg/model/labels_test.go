package model

import "testing"

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"serverPort":       "Server Port",
		"server_port":      "Server Port",
		"server-port":      "Server Port",
		"server.port":      "Port",
		"database.maxConn": "Max Conn",
		"TLSEnabled":       "Tlsenabled",
		"port8080":         "Port 8080",
		"":                 "",
	}
	for input, want := range cases {
		if got := DefaultLabeler(input); got != want {
			t.Errorf("DefaultLabeler(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestKebabCase(t *testing.T) {
	cases := map[string]string{
		"serverPort":  "server-port",
		"server_port": "server-port",
		"Server Port": "server-port",
		"HTTPPort":    "httpport",
		"":            "",
	}
	for input, want := range cases {
		if got := KebabCase(input); got != want {
			t.Errorf("KebabCase(%q) = %q, want %q", input, got, want)
		}
	}
}
