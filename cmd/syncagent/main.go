package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"readalong/internal/cache"
	"readalong/internal/config"
	"readalong/internal/models"
	"readalong/internal/practice"
	"readalong/internal/remote"
	"readalong/internal/syncer"
)

func main() {
	// Define subcommands
	syncCmd := flag.NewFlagSet("sync", flag.ExitOnError)
	recordCmd := flag.NewFlagSet("record", flag.ExitOnError)
	studentsCmd := flag.NewFlagSet("students", flag.ExitOnError)
	useClassCmd := flag.NewFlagSet("use-class", flag.ExitOnError)

	// Sync flags
	syncWatch := syncCmd.Duration("watch", 0, "Keep syncing at this interval (e.g. 5m); 0 syncs once")

	// Record flags
	recordStudent := recordCmd.String("student", "", "Student id (required)")
	recordWeek := recordCmd.Int("week", 0, "Week number (required)")
	recordScore := recordCmd.Int("score", 0, "Score 0-100")
	recordSpeed := recordCmd.Int("speed", 0, "Reading speed in words per minute")
	recordAudio := recordCmd.String("audio", "", "Path to a practice recording to upload")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()

	store, err := cache.New(cfg.CacheDir)
	if err != nil {
		log.Fatalf("Failed to open local cache: %v", err)
	}

	client := remote.New(cfg.RemoteBaseURL)
	outbox := syncer.NewOutbox(client, syncer.DefaultMaxAttempts)
	reconciler := syncer.NewReconciler(store, client, outbox)

	ctx := context.Background()

	switch os.Args[1] {
	case "sync":
		syncCmd.Parse(os.Args[2:])
		handleSync(ctx, store, reconciler, outbox, *syncWatch)

	case "record":
		recordCmd.Parse(os.Args[2:])
		if *recordStudent == "" || *recordWeek < 1 {
			fmt.Println("Error: -student and -week are required")
			recordCmd.PrintDefaults()
			os.Exit(1)
		}
		handleRecord(ctx, store, client, outbox, *recordStudent, *recordWeek, *recordScore, *recordSpeed, *recordAudio)

	case "students":
		studentsCmd.Parse(os.Args[2:])
		handleStudents(store)

	case "use-class":
		useClassCmd.Parse(os.Args[2:])
		if useClassCmd.NArg() != 1 {
			fmt.Println("Error: class id required, e.g. use-class DEFAULT")
			os.Exit(1)
		}
		if err := store.SetSelectedClass(useClassCmd.Arg(0)); err != nil {
			log.Fatalf("Failed to select class: %v", err)
		}
		log.Printf("Selected class: %s", useClassCmd.Arg(0))

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleSync(ctx context.Context, store *cache.Store, reconciler *syncer.Reconciler, outbox *syncer.Outbox, watch time.Duration) {
	classID := store.SelectedClass()

	runOnce := func() {
		if err := reconciler.Sync(ctx, classID); err != nil {
			log.Printf("Sync failed: %v", err)
		}
		outbox.DrainFully(ctx)
		status := outbox.Status()
		log.Printf("Sync finished: %d students cached, %d pushes sent, %d pending, %d dropped",
			len(store.Load()), status.Sent, status.Pending, status.Dropped)
	}

	runOnce()
	if watch <= 0 {
		return
	}

	ticker := time.NewTicker(watch)
	defer ticker.Stop()
	for range ticker.C {
		runOnce()
	}
}

func handleRecord(ctx context.Context, store *cache.Store, client *remote.Client, outbox *syncer.Outbox, studentID string, week, score, speed int, audioPath string) {
	writer := practice.NewResultWriter(store, client, outbox)

	var audio io.Reader
	if audioPath != "" {
		f, err := os.Open(audioPath)
		if err != nil {
			log.Fatalf("Failed to open recording: %v", err)
		}
		defer f.Close()
		audio = f
	}

	err := writer.SaveResult(ctx, studentID, week, score, models.SpeedFromWPM(float64(speed)), audio)
	if err != nil {
		log.Fatalf("Failed to save result: %v", err)
	}

	outbox.DrainFully(ctx)
	status := outbox.Status()
	log.Printf("Result saved: week %d for %s (%d pushes sent, %d pending, %d dropped)",
		week, studentID, status.Sent, status.Pending, status.Dropped)
}

func handleStudents(store *cache.Store) {
	records := store.Load()
	if len(records) == 0 {
		fmt.Println("No students cached; run sync first")
		return
	}

	fmt.Printf("%-14s %-20s %-8s %-8s %s\n", "ID", "NAME", "AVG", "LESSONS", "LAST PRACTICE")
	for _, rec := range records {
		fmt.Printf("%-14s %-20s %-8d %-8d %s\n",
			rec.ID, rec.Name, rec.AverageScore, rec.CompletedLessons,
			rec.LastPractice.Format("2006-01-02 15:04"))
	}
}

func printUsage() {
	fmt.Println("ReadAlong Sync Agent")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  syncagent sync [-watch 5m]      Reconcile the local cache with the server")
	fmt.Println("  syncagent record [options]      Record a practice result locally and push it")
	fmt.Println("  syncagent students              List locally cached students")
	fmt.Println("  syncagent use-class <id>        Select the class to sync")
	fmt.Println()
	fmt.Println("Record Options:")
	fmt.Println("  -student <id>    Student id (required)")
	fmt.Println("  -week <n>        Week number (required)")
	fmt.Println("  -score <n>       Score 0-100")
	fmt.Println("  -speed <n>       Reading speed in words per minute")
	fmt.Println("  -audio <file>    Practice recording to upload")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  REMOTE_BASE_URL  Server address (default: http://localhost:8080)")
	fmt.Println("  CACHE_DIR        Local cache directory (default: ~/.readalong)")
}
