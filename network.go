package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:    2048,
	WriteBufferSize:   8192, // Larger for batching
	EnableCompression: true,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents a connected WebSocket client
type Client struct {
	ID       string
	Conn     *websocket.Conn // Primary: state frames
	MetaConn *websocket.Conn // Secondary: msgpack metadata
	Send     chan []byte
	MetaSend chan []byte
	World    *World
	Angler   *Angler
	closed   bool
	mu       sync.Mutex
}

// NewClient creates a new client
func NewClient(id string, conn *websocket.Conn, world *World) *Client {
	return &Client{
		ID:       id,
		Conn:     conn,
		Send:     make(chan []byte, WriteChannelSize),
		MetaSend: make(chan []byte, WriteChannelSize),
		World:    world,
	}
}

// Close closes the outgoing channels; the write pumps then close the sockets
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	close(c.MetaSend)
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.World.Disconnect(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		c.HandleMessage(msg)
	}
}

// WritePump sends messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(time.Duration(PingInterval) * time.Millisecond)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// Batch queued frames; every frame is self-delimiting
			batched := message
		batchLoop:
			for i := 0; i < 10; i++ {
				select {
				case next, ok := <-c.Send:
					if !ok {
						break batchLoop
					}
					batched = append(batched, next...)
				default:
					break batchLoop
				}
			}

			if err := c.Conn.WriteMessage(websocket.BinaryMessage, batched); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// MetaWritePump sends msgpack messages on the secondary WebSocket, one
// message per frame
func (c *Client) MetaWritePump(conn *websocket.Conn) {
	defer conn.Close()

	for message := range c.MetaSend {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
			return
		}
	}
	conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// HandleMessage processes incoming client messages
func (c *Client) HandleMessage(msg ClientMessage) {
	switch msg.Type {
	case "join":
		c.HandleJoin(msg)
	case "input":
		c.queueInput(AnglerInput{
			Kind:     InputMove,
			Throttle: msg.Throttle,
			Turn:     msg.Turn,
			Steer:    Vec2{X: msg.SteerX, Y: msg.SteerZ},
			Seq:      msg.Seq,
		})
	case "cast":
		c.queueInput(AnglerInput{Kind: InputCast, Charge: msg.Charge, Seq: msg.Seq})
	case "reel":
		c.queueInput(AnglerInput{Kind: InputReel, Reel: msg.Reel, Seq: msg.Seq})
	case "fish":
		c.queueInput(AnglerInput{Kind: InputFish, Seq: msg.Seq})
	case "navigate":
		c.queueInput(AnglerInput{Kind: InputNavigate, Seq: msg.Seq})
	case "command":
		c.HandleCommand(msg.Command)
	case "ping":
		c.SendMessage(ServerMessage{Type: "pong"})
	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// HandleJoin processes a join message
func (c *Client) HandleJoin(msg ClientMessage) {
	if c.Angler != nil {
		return
	}

	name := strings.TrimSpace(msg.Name)
	if len(name) > MaxPlayerNameLen {
		name = name[:MaxPlayerNameLen]
	}
	if name == "" {
		name = "Angler"
	}

	sim := c.World.Sim
	spawn := c.World.SpawnPoint()
	species := make([]string, 0, sim.Registry.Len())
	for _, info := range sim.Registry.All() {
		species = append(species, info.Name)
	}

	// Welcome goes out before the angler joins so it precedes any state frame
	c.SendMessage(ServerMessage{
		Type: "welcome",
		Payload: WelcomePayload{
			ID:         c.ID,
			Name:       name,
			MapSize:    MapSize,
			Spawn:      spawn,
			Areas:      sim.Map.Areas(),
			Species:    species,
			Seed:       sim.RNG().Seed(),
			CatchModel: sim.CatchModel,
		},
	})

	c.Angler = NewAngler(c.ID, name, spawn, c)
	c.World.AddAngler(c.Angler)

	log.Printf("Angler %s (%s) joined", name, c.ID)
}

func (c *Client) queueInput(input AnglerInput) {
	if c.Angler == nil {
		return
	}
	input.AnglerID = c.ID

	// Try to send to input queue (non-blocking)
	select {
	case c.World.InputQueue <- input:
	default:
		log.Printf("Input queue full, dropping input from %s", c.ID)
	}
}

// HandleCommand runs an admin command and replies with the result
func (c *Client) HandleCommand(line string) {
	if c.Angler == nil {
		return
	}
	reply := c.World.QueueCommand(line)
	go func() {
		select {
		case result := <-reply:
			c.SendMessage(ServerMessage{Type: "commandResult", Payload: result})
		case <-time.After(5 * time.Second):
			log.Printf("Command %q from %s timed out", line, c.ID)
		}
	}()
}

// SendMessage sends a message to the client (routes to appropriate socket)
func (c *Client) SendMessage(msg ServerMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	var (
		data   []byte
		err    error
		target chan []byte
	)
	if IsMetaMessage(msg.Type) && c.MetaConn != nil {
		data, err = EncodeMetaMessage(msg)
		target = c.MetaSend
	} else {
		data, err = EncodeBinaryMessage(msg)
		target = c.Send
	}
	if err != nil {
		log.Printf("Error encoding %s message: %v", msg.Type, err)
		return
	}

	select {
	case target <- data:
	default:
		// Client too slow; closing the socket ends ReadPump, which disconnects
		log.Printf("Client %s send channel full, closing connection", c.ID)
		c.Conn.Close()
	}
}

// HandleWebSocket upgrades HTTP connection to WebSocket (primary socket)
func HandleWebSocket(world *World) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade error: %v", err)
			return
		}

		client := NewClient(uuid.NewString(), conn, world)

		go client.WritePump()
		go client.ReadPump()
	}
}

// HandleMetaWebSocket upgrades HTTP connection to metadata WebSocket (secondary socket)
func HandleMetaWebSocket(world *World) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := r.URL.Query().Get("id")
		if _, err := uuid.Parse(clientID); err != nil {
			http.Error(w, "Missing or invalid client ID", http.StatusBadRequest)
			return
		}

		client := world.FindClient(clientID)
		if client == nil {
			http.Error(w, "Unknown client ID", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Meta WebSocket upgrade error: %v", err)
			return
		}

		client.mu.Lock()
		if client.closed || client.MetaConn != nil {
			client.mu.Unlock()
			conn.Close()
			return
		}
		client.MetaConn = conn
		client.mu.Unlock()

		log.Printf("Meta WebSocket connected for client %s", clientID)

		// Species table goes out on the new socket
		client.SendMessage(ServerMessage{Type: "species", Payload: world.speciesTable()})

		go client.MetaWritePump(conn)
	}
}
