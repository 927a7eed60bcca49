package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/authdash/internal/client/models"
)

// TableFormatter renders user records as aligned columns. Other values fall
// back to JSON.
type TableFormatter struct {
	NoHeaders bool
}

func (f *TableFormatter) Format(w io.Writer, data any) error {
	var users []models.UserRecord
	switch v := data.(type) {
	case []models.UserRecord:
		users = v
	case models.UserRecord:
		users = []models.UserRecord{v}
	case *models.UserRecord:
		if v != nil {
			users = []models.UserRecord{*v}
		}
	default:
		return (&JSONFormatter{}).Format(w, data)
	}

	if len(users) == 0 {
		_, err := fmt.Fprintln(w, "No users.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !f.NoHeaders {
		fmt.Fprintln(tw, "EMAIL\tCREATED")
	}
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\n", u.Email, u.CreatedAt.Format(DateLayout))
	}
	return tw.Flush()
}
