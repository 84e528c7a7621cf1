// Command chat_load drives a running nova web server: simulated users post chat
// messages while listeners follow the turn stream.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

var defaultMessages = []string{
	"what is the price of bitcoin",
	"price of eth on 01-12-2024",
	"entry points for solana",
	"tell me about chainlink",
}

type stats struct {
	replies     int64
	chatErrs    int64
	listeners   int64
	connectErrs int64
	streamErrs  int64
	events      int64
}

func (s *stats) String() string {
	return fmt.Sprintf("replies=%d chat_errs=%d listeners=%d connect_errs=%d stream_errs=%d events=%d",
		atomic.LoadInt64(&s.replies),
		atomic.LoadInt64(&s.chatErrs),
		atomic.LoadInt64(&s.listeners),
		atomic.LoadInt64(&s.connectErrs),
		atomic.LoadInt64(&s.streamErrs),
		atomic.LoadInt64(&s.events),
	)
}

func main() {
	var (
		baseURL      string
		users        int
		listeners    int
		pause        time.Duration
		testDuration time.Duration
		messages     string
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "nova server base URL")
	flag.IntVar(&users, "users", 5, "number of simulated chat users")
	flag.IntVar(&listeners, "listeners", 50, "number of turn stream listeners")
	flag.DurationVar(&pause, "pause", 2*time.Second, "pause between messages of one user")
	flag.DurationVar(&testDuration, "dur", 60*time.Second, "test duration (0 for until interrupted)")
	flag.StringVar(&messages, "messages", "", "messages separated by '|', defaults to a built-in set")
	flag.Parse()

	if users < 0 || listeners < 0 || users+listeners == 0 {
		log.Fatalf("invalid users=%d listeners=%d", users, listeners)
	}

	script := defaultMessages
	if messages != "" {
		script = strings.Split(messages, "|")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	log.Printf("starting chat load: url=%s users=%d listeners=%d duration=%s", baseURL, users, listeners, testDuration)

	connections := users + listeners
	client := &http.Client{
		Transport: &http.Transport{
			MaxConnsPerHost:     connections + 100,
			MaxIdleConns:        connections + 100,
			MaxIdleConnsPerHost: connections + 100,
			DisableCompression:  true,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
		Timeout: 0, // streaming
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			log.Printf("caught signal: %s, shutting down...", sig)
		case <-ctx.Done():
			return
		}
		cancel()
	}()

	if testDuration > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, testDuration)
		defer timeoutCancel()
	}

	st := &stats{}
	start := time.Now()
	var wg sync.WaitGroup

	for i := 0; i < listeners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listen(ctx, client, baseURL+"/api/turns/stream", st)
		}()
	}
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			chatter(ctx, client, baseURL+"/api/chat", fmt.Sprintf("load-user-%d", id), script, pause, st)
		}(i)
	}

	ticker := time.NewTicker(5 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Printf("status: %s elapsed=%s", st, time.Since(start).Truncate(time.Second))
			}
		}
	}()

	wg.Wait()
	cancel()

	elapsed := time.Since(start)
	if elapsed == 0 {
		elapsed = time.Millisecond
	}
	fmt.Printf("done: %s elapsed=%s replies/s=%.2f\n",
		st, elapsed.Truncate(time.Millisecond), float64(atomic.LoadInt64(&st.replies))/elapsed.Seconds())
}

// chatter posts the script in a loop until ctx is done.
func chatter(ctx context.Context, client *http.Client, url, username string, script []string, pause time.Duration, st *stats) {
	for i := 0; ctx.Err() == nil; i++ {
		if err := send(ctx, client, url, username, script[i%len(script)]); err != nil {
			if ctx.Err() != nil {
				return
			}
			atomic.AddInt64(&st.chatErrs, 1)
		} else {
			atomic.AddInt64(&st.replies, 1)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(pause):
		}
	}
}

func send(ctx context.Context, client *http.Client, url, username, message string) error {
	body, err := json.Marshal(map[string]string{"username": username, "message": message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var out struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s%s", resp.StatusCode, out.Response, out.Error)
	}
	return nil
}

// listen follows the turn stream and counts events until ctx is done or the stream breaks.
func listen(ctx context.Context, client *http.Client, url string, st *stats) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		atomic.AddInt64(&st.connectErrs, 1)
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		atomic.AddInt64(&st.connectErrs, 1)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		atomic.AddInt64(&st.connectErrs, 1)
		return
	}

	atomic.AddInt64(&st.listeners, 1)
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() == nil {
				atomic.AddInt64(&st.streamErrs, 1)
			}
			return
		}
		if strings.HasPrefix(line, "event: turn") {
			atomic.AddInt64(&st.events, 1)
		}
	}
}
