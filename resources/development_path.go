//go:build !release
// +build !release

package resources

const configDir = ".testnes"

func resourcePath() (string, error) {
	return configDir, nil
}
