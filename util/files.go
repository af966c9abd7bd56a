package util

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
)

// MD5File is logged next to model and corpus paths so runs can be matched
// to their inputs.
func MD5File(fileName string) (string, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

func Exists(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}
