// Package banner prints a startup summary, following the teacher's
// ASCII-art-plus-config-dump convention.
package banner

import (
	"fmt"

	"litemq/pkg/config"

	"github.com/dustin/go-humanize"
)

const art = `
██╗     ██╗████████╗███████╗███╗   ███╗ ██████╗
██║     ██║╚══██╔══╝██╔════╝████╗ ████║██╔═══██╗
██║     ██║   ██║   █████╗  ██╔████╔██║██║   ██║
██║     ██║   ██║   ██╔══╝  ██║╚██╔╝██║██║▄▄ ██║
███████╗██║   ██║   ███████╗██║ ╚═╝ ██║╚██████╔╝
╚══════╝╚═╝   ╚═╝   ╚══════╝╚═╝     ╚═╝ ╚══▀▀═╝
`

// Print renders the startup banner from a resolved EffectiveConfigResult:
// listen address, storage mode, queue count, and which config layer won
// each contractual setting.
func Print(eff config.EffectiveConfigResult, queueCount int, dataDirSize uint64, version string) {
	fmt.Print(art)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:    :%d (%s)\n", eff.Config.Server.Port, eff.PortSource)
	fmt.Printf("Mode:      %s (%s)\n", eff.Config.Server.Mode, eff.ModeSource)
	if eff.Config.Server.Mode == "persistent" {
		fmt.Printf("Data dir:  %s (%s)\n", eff.Config.Server.DataDir, eff.DataDirSrc)
		fmt.Printf("Queues:    %d (%s on disk)\n", queueCount, humanize.Bytes(dataDirSize))
	} else {
		fmt.Printf("Queues:    %d (in-memory)\n", queueCount)
	}
	fmt.Printf("Log level: %s (%s)\n", eff.Config.Logging.Level, eff.LevelSource)
	if version != "" {
		fmt.Printf("Version:   %s\n", version)
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("GET  /v1/health")
	fmt.Println("POST /v1/queues/{name}/messages")
	fmt.Println("GET  /v1/queues/{name}/messages/next")
	fmt.Println("GET  /v1/queues/{name}/length")
	fmt.Println("POST /v1/queues/{name}/purge")
	fmt.Println("POST /v1/flush")
	fmt.Println("GET  /metrics")
	fmt.Println("GET  /docs/")
}
