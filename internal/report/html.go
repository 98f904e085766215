package report

import (
	"ezrecover/domain/ezdiffusion"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const htmlTitle = "EZ-Diffusion Parameter Recovery"

// HTML renders the markdown report as a standalone page
func HTML(r *ezdiffusion.AggregateReport) []byte {
	// parsers carry state and cannot be reused across documents
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: htmlTitle,
	})
	return markdown.ToHTML([]byte(Markdown(r)), p, renderer)
}

// SaveHTML writes the HTML page to path
func SaveHTML(path string, r *ezdiffusion.AggregateReport) error {
	return save(path, HTML(r))
}
