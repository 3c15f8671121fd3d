package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	configPath := flag.String("config", "", "YAML config file (defaults when empty)")
	seed := flag.Int64("seed", 0, "simulation seed; 0 seeds from the clock")
	console := flag.Bool("console", false, "read admin commands from stdin")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Config error:", err)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	// Create the game world
	world, err := NewWorld(cfg)
	if err != nil {
		log.Fatal("World error:", err)
	}

	// Start the game loop
	world.Start()

	if *console {
		go RunConsole(world, os.Stdin, os.Stdout)
	}

	// Setup HTTP routes
	http.HandleFunc("/ws", HandleWebSocket(world))          // Primary: state frames
	http.HandleFunc("/ws/meta", HandleMetaWebSocket(world)) // Secondary: metadata
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Carpa Diem Server Running"))
	})

	log.Printf("Starting server on %s (catch model %s, path %s)", *addr, cfg.CatchModel, cfg.PathStrategy)
	log.Printf("WebSocket endpoints:")
	log.Printf("  - Primary:  ws://localhost%s/ws", *addr)
	log.Printf("  - Metadata: ws://localhost%s/ws/meta?id=<client id>", *addr)

	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatal("Server error:", err)
	}
}

// RunConsole feeds admin commands from in to the game loop and prints the
// results to out
func RunConsole(world *World, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		result := <-world.QueueCommand(line)
		fmt.Fprintln(out, result.Output)
	}
	if err := scanner.Err(); err != nil {
		log.Printf("Console error: %v", err)
	}
}
