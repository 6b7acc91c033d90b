package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/cobra"

	"github.com/tripraptomo/stanza/scaffold"
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a new site skeleton",
	Long: `New writes a ready-to-serve site skeleton into a fresh directory:
site.yaml, a set of layouts, a sample post, and a stylesheet. Run
"stanza serve" inside it to see the result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNew(args[0])
	},
}

// scaffoldData holds the template variables passed to every scaffold file.
type scaffoldData struct {
	SiteName string
}

func runNew(name string) error {
	if _, err := os.Stat(name); err == nil {
		return fmt.Errorf("directory %q already exists", name)
	}

	data := scaffoldData{
		SiteName: toTitle(filepath.Base(name)),
	}

	fmt.Printf("Creating new stanza site: %s\n\n", name)

	root := "templates"
	err := fs.WalkDir(scaffold.Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		outPath := filepath.Join(name, relPath)
		outPath = strings.TrimSuffix(outPath, ".tmpl")

		// Files that would be awkward to carry under their real names.
		switch filepath.Base(outPath) {
		case "dotenv":
			outPath = filepath.Join(filepath.Dir(outPath), ".env.example")
		case "gitignore":
			outPath = filepath.Join(filepath.Dir(outPath), ".gitignore")
		case "hello-world.md":
			// The sample post is dated the day the site is created, the
			// same way real posts encode their date in the filename.
			stamp := time.Now().Format("2006-01-02")
			outPath = filepath.Join(filepath.Dir(outPath), stamp+"-hello-world.md")
		}

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		content, err := scaffold.Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		// Scaffold files use [[ ]] delimiters so the {{ }} actions inside
		// the generated layouts pass through untouched.
		tmpl, err := template.New(filepath.Base(path)).Delims("[[", "]]").Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}

		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()

		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}

		fmt.Printf("  created %s\n", outPath)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Done! Next steps:")
	fmt.Println()
	fmt.Printf("  cd %s\n", name)
	fmt.Println("  stanza serve")
	fmt.Println()
	fmt.Println("Write posts as content/posts/YYYY-MM-DD-slug.md.")
	fmt.Println("Set STANZA_EDIT_PASSWORD and pass --edit to serve for the in-browser editor.")
	return nil
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

func init() {
	rootCmd.AddCommand(newCmd)
}
