package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/linguaku/linguaku/internal/ui/theme"
)

const bannerArt = `
 ██╗     ██╗███╗   ██╗ ██████╗ ██╗   ██╗ █████╗ ██╗  ██╗██╗   ██╗
 ██║     ██║████╗  ██║██╔════╝ ██║   ██║██╔══██╗██║ ██╔╝██║   ██║
 ██║     ██║██╔██╗ ██║██║  ███╗██║   ██║███████║█████╔╝ ██║   ██║
 ██║     ██║██║╚██╗██║██║   ██║██║   ██║██╔══██║██╔═██╗ ██║   ██║
 ███████╗██║██║ ╚████║╚██████╔╝╚██████╔╝██║  ██║██║  ██╗╚██████╔╝
 ╚══════╝╚═╝╚═╝  ╚═══╝ ╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝`

const bannerCompact = "L I N G U A K U"

// RenderBanner returns the banner in the primary color, or a compact
// version for terminals narrower than the art.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 68 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
