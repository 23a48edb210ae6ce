// Package banner prints the CLI startup banner.
package banner

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

func Print() {
	art := `
████████╗ ██████╗ ██╗     ██╗      ██████╗  █████╗ ████████╗███████╗
╚══██╔══╝██╔═══██╗██║     ██║     ██╔════╝ ██╔══██╗╚══██╔══╝██╔════╝
   ██║   ██║   ██║██║     ██║     ██║  ███╗███████║   ██║   █████╗
   ██║   ██║   ██║██║     ██║     ██║   ██║██╔══██║   ██║   ██╔══╝
   ██║   ╚██████╔╝███████╗███████╗╚██████╔╝██║  ██║   ██║   ███████╗
   ╚═╝    ╚═════╝ ╚══════╝╚══════╝ ╚═════╝ ╚═╝  ╚═╝   ╚═╝   ╚══════╝
`
	c := color.New(color.FgCyan, color.Bold)
	c.Println(art)

	fmt.Printf("   Dual-protocol forward proxy\n")
	fmt.Printf("   Start Time: %s\n", time.Now().Format(time.RFC1123))
	fmt.Println(strings.Repeat("-", 50))
}

func PrintListening(httpAddr, socksAddr string, nodeCount int) {
	color.Green("✓ Proxy started")
	fmt.Printf("   • HTTP:        %s\n", httpAddr)
	fmt.Printf("   • SOCKS5:      %s\n", socksAddr)
	fmt.Printf("   • Upstream nodes: %d\n", nodeCount)
	fmt.Println(strings.Repeat("-", 50))
}

func PrintShutdown() {
	color.Yellow("… Shutting down, draining in-flight connections")
}
