package infra

import "fmt"

// ANSI Color Codes
const (
	ColorReset  = "\033[0m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// PrintBanner displays the startup banner with wallet-mode specific coloring.
func PrintBanner(cfg *Config) {
	mode := "DEMO WALLET"
	color := ColorYellow
	if cfg.Wallet.BridgeURL != "" {
		mode = "PROVIDER BRIDGE"
		color = ColorGreen
	}

	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#          🏠 PropChain Trading Client                    #%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#   WALLET:  %-36s #%s\n", color, mode, ColorReset)
	fmt.Printf("%s#   BACKEND: %-36s #%s\n", color, cfg.Backend.BaseURL, ColorReset)
	fmt.Printf("%s#   VERSION: %-36s #%s\n", color, cfg.App.Version, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Println()
}
