// ws-watch subscribes to the daemon's websocket feed and prints every
// update. Handy for checking finger counts and tracking output without
// opening the dashboard.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
)

func main() {
	addr := flag.String("addr", "localhost:8042", "Daemon host:port")
	flag.Parse()

	url := fmt.Sprintf("ws://%s/ws", *addr)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s: %v\n", url, err)
		os.Exit(1)
	}
	defer conn.Close()
	fmt.Printf("connected to %s\n", url)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	messages := make(chan []byte)
	go func() {
		defer close(messages)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				fmt.Fprintf(os.Stderr, "read: %v\n", err)
				return
			}
			messages <- data
		}
	}()

	for {
		select {
		case <-sigChan:
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case data, ok := <-messages:
			if !ok {
				return
			}
			fmt.Println(string(data))
		}
	}
}
