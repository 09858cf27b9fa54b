// Package cli provides common utilities for tutorcore command-line tools.
//
// This package includes:
//   - Terminal styling for transcript display (lipgloss themes)
//   - Output formatting (YAML, JSON, raw)
//   - Directory layout helpers (~/.tutorcore)
//
// Example usage:
//
//	styles := cli.NewStyles(cli.DefaultTheme)
//	fmt.Println(styles.FormatItem(item))
//
//	cli.Output(result, cli.OutputOptions{Format: cli.FormatJSON})
package cli
