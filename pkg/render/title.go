package render

import "fmt"

// ErrorTitle is the title used while count fields are invalid. It returns ""
// when there is nothing to report so callers can fall back to the regular
// document title.
func ErrorTitle(count int, title string) string {
	if count <= 0 {
		return ""
	}
	return fmt.Sprintf("%d箇所の入力エラーがあります - %s", count, title)
}
