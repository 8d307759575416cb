// Package version хранит версию сборки.
package version

// Version задается при сборке:
//
//	go build -ldflags "-X lockblock/internal/version.Version=v1.2.0"
var Version = "v1.0.0"

// GetVersion возвращает версию приложения.
func GetVersion() string {
	return Version
}
