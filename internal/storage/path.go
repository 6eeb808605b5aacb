package storage

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

const exportRoot = "exports"

var (
	exportIDPattern  = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,63}$`)
	exportKeyPattern = regexp.MustCompile(`^exports/date=[0-9]{4}-[0-9]{2}-[0-9]{2}/[a-zA-Z0-9][a-zA-Z0-9-]{0,63}\.parquet$`)
)

// BuildExportPath returns exports/date=YYYY-MM-DD/<id>.parquet, dated in UTC.
func BuildExportPath(createdAt time.Time, exportID string) (string, error) {
	if !exportIDPattern.MatchString(exportID) {
		return "", fmt.Errorf("invalid export id: %q", exportID)
	}
	ts := createdAt.UTC()
	return path.Join(
		exportRoot,
		fmt.Sprintf("date=%04d-%02d-%02d", ts.Year(), ts.Month(), ts.Day()),
		exportID+".parquet",
	), nil
}

// ValidateExportKey accepts only keys produced by BuildExportPath.
func ValidateExportKey(key string) error {
	if !exportKeyPattern.MatchString(strings.TrimSpace(key)) {
		return fmt.Errorf("invalid export key: %q", key)
	}
	return nil
}
