package tafsir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yfarhan/ilmconvert/internal/model"
)

// Ayah ints are the integer representation of an ayah key: the surah
// number multiplied by 1000 plus the ayah number. Ayah 1 of surah 1 is
// 1001. This gives every ayah a total order, so any two ayahs compare
// and any range is an integer interval.

// ParseAyahKey converts a "surah:ayah" key into its integer pair.
// A malformed key is a ContentError, never a silent default.
func ParseAyahKey(key string) (surah, ayah int, err error) {
	parts := strings.Split(key, ":")
	if len(parts) != 2 {
		return 0, 0, &model.ContentError{Item: key, Reason: "ayah key must be \"surah:ayah\""}
	}
	surah, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || surah < 1 {
		return 0, 0, &model.ContentError{Item: key, Reason: "surah part is not a positive integer"}
	}
	ayah, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || ayah < 1 {
		return 0, 0, &model.ContentError{Item: key, Reason: "ayah part is not a positive integer"}
	}
	return surah, ayah, nil
}

// AyahKeyToInt converts an ayah key to its ayah int
func AyahKeyToInt(key string) (int, error) {
	surah, ayah, err := ParseAyahKey(key)
	if err != nil {
		return 0, err
	}
	return surah*1000 + ayah, nil
}

// AyahIntToKey converts an ayah int back to its key form
func AyahIntToKey(n int) string {
	return fmt.Sprintf("%d:%d", n/1000, n%1000)
}

// SplitAyahKeys splits the stored comma-separated key list, preserving
// order and dropping empty entries
func SplitAyahKeys(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}
