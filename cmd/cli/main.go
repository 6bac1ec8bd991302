package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "todo":
		handleTodo(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: calmly <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  auth register -email <email> -password <password>")
	fmt.Println("  auth login -email <email> -password <password>")
	fmt.Println("  auth logout")
	fmt.Println("  auth who")
	fmt.Println("  todo list")
	fmt.Println("  todo add -text <text> [-priority low|medium|high] [-category <name>]")
	fmt.Println("  todo done <id>")
	fmt.Println("  todo rm <id>")
	fmt.Println("  todo clear            remove all completed todos")
	fmt.Println()
	fmt.Println("The API base URL is read from CALMLY_API_URL (default http://localhost:8080)")
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: calmly auth <register|login|logout|who>")
		return
	}

	switch args[0] {
	case "register":
		registerUser(args[1:])
	case "login":
		loginUser(args[1:])
	case "logout":
		os.Remove(tokenFile())
		fmt.Println("✓ Logged out")
	case "who":
		token := loadToken()
		if token == "" {
			fmt.Println("Not logged in")
			return
		}
		fmt.Printf("✓ Logged in (token: %s...)\n", token[:20])
	default:
		fmt.Printf("unknown auth command: %s\n", args[0])
	}
}

func handleTodo(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: calmly todo <list|add|done|rm|clear>")
		return
	}

	switch args[0] {
	case "list":
		listTodos()
	case "add":
		addTodo(args[1:])
	case "done":
		if len(args) < 2 {
			fmt.Println("Usage: calmly todo done <id>")
			return
		}
		markDone(args[1])
	case "rm":
		if len(args) < 2 {
			fmt.Println("Usage: calmly todo rm <id>")
			return
		}
		removeTodo(args[1])
	case "clear":
		clearCompleted()
	default:
		fmt.Printf("unknown todo command: %s\n", args[0])
	}
}

func registerUser(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/register", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ User registered: %s\n", *email)
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result)
	}
}

func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	// The login endpoint takes a form-encoded body
	form := url.Values{"username": {*email}, "password": {*password}}
	resp, err := http.PostForm(getAPIURL()+"/login", form)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["access_token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s\n", *email)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func listTodos() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/todos", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		fmt.Printf("✗ List failed (status %d)\n", resp.StatusCode)
		return
	}

	var todos []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&todos)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tTEXT\tPRIORITY\tCREATED")
	for _, t := range todos {
		done := " "
		if completed, ok := t["completed"].(bool); ok && completed {
			done = "x"
		}
		priority := ""
		if p, ok := t["priority"].(string); ok {
			priority = p
		}
		created := ""
		if ms, ok := t["createdAt"].(float64); ok {
			created = time.UnixMilli(int64(ms)).Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%v\t[%s]\t%v\t%s\t%s\n", t["id"], done, t["text"], priority, created)
	}
	w.Flush()
}

func addTodo(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	text := fs.String("text", "", "todo text")
	priority := fs.String("priority", "", "low, medium or high")
	category := fs.String("category", "", "category")
	fs.Parse(args)

	if *text == "" {
		fmt.Println("Error: text is required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]interface{}{"text": *text}
	if *priority != "" {
		payload["priority"] = *priority
	}
	if *category != "" {
		payload["category"] = *category
	}
	data, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", getAPIURL()+"/todos", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Added: %v\n", result["id"])
	} else {
		fmt.Printf("✗ Add failed: %v\n", result)
	}
}

func markDone(id string) {
	data, _ := json.Marshal(map[string]bool{"completed": true})
	req, _ := http.NewRequest("PATCH", getAPIURL()+"/todos/"+id, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 200 {
		fmt.Printf("✓ Done: %s\n", id)
	} else {
		fmt.Printf("✗ Update failed (status %d)\n", resp.StatusCode)
	}
}

func removeTodo(id string) {
	req, _ := http.NewRequest("DELETE", getAPIURL()+"/todos/"+id, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 204 {
		fmt.Printf("✓ Removed: %s\n", id)
	} else {
		fmt.Printf("✗ Remove failed (status %d)\n", resp.StatusCode)
	}
}

func clearCompleted() {
	req, _ := http.NewRequest("DELETE", getAPIURL()+"/todos/completed", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 204 {
		fmt.Println("✓ Completed todos cleared")
	} else {
		fmt.Printf("✗ Clear failed (status %d)\n", resp.StatusCode)
	}
}

func getAPIURL() string {
	if url := os.Getenv("CALMLY_API_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

func tokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".calmly-token"
	}
	return filepath.Join(home, ".calmly-token")
}

func saveToken(token string) {
	os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, err := os.ReadFile(tokenFile())
	if err != nil {
		return ""
	}
	return string(data)
}

func addAuthHeader(req *http.Request) {
	if token := loadToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
