package tools

import (
	"encoding/json"
	"os"
)

// IsEqual compares a and b by their json encoding.
func IsEqual(a interface{}, b interface{}) bool {
	expect, _ := json.Marshal(a)
	got, _ := json.Marshal(b)
	return string(expect) == string(got)
}

// FileExists reports whether fileName exists and is not a directory.
func FileExists(fileName string) bool {
	info, err := os.Stat(fileName)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateFile creates an empty file.
func CreateFile(fileName string) error {
	f, err := os.Create(fileName)
	if err != nil {
		return err
	}
	return f.Close()
}
