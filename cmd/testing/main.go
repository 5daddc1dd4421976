package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

var URL, _ = os.LookupEnv("API_URL")
var PORT, _ = os.LookupEnv("API_PORT")
var apiURL = fmt.Sprintf("http://%s:%s/api/v1", URL, PORT)
var confirmURL = apiURL + "/donations/confirm"

const (
	workers = 10
	rounds  = 20
)

type confirmation struct {
	DonationID string `json:"donationId"`
	Status     string `json:"status"`
	Applied    bool   `json:"applied"`
	Campaign   struct {
		ID                 string `json:"id"`
		CurrentAmount      string `json:"currentAmount"`
		ProgressPercentage string `json:"progressPercentage"`
		Status             string `json:"status"`
	} `json:"campaign"`
}

// Fires duplicate confirms for every reference in REFERENCES (comma separated) from many
// workers at once and reports how many of them were applied. Each reference must be applied
// at most once no matter how many confirms race.
func main() {
	refs := strings.Split(os.Getenv("REFERENCES"), ",")
	if len(refs) == 0 || refs[0] == "" {
		fmt.Println("REFERENCES is required")
		os.Exit(1)
	}

	var mu sync.Mutex
	applied := make(map[string]int)
	statuses := make(map[int]int)
	last := make(map[string]confirmation)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				ref := refs[rand.Intn(len(refs))]
				code, res, err := sendConfirm(ref)
				if err != nil {
					fmt.Println("Error sending confirm:", err)
					continue
				}

				mu.Lock()
				statuses[code]++
				if res != nil {
					last[ref] = *res
					if res.Applied {
						applied[ref]++
					}
				}
				mu.Unlock()

				time.Sleep(time.Duration(rand.Intn(50)) * time.Millisecond)
			}
		}()
	}
	wg.Wait()

	fmt.Println("Status codes:", statuses)
	for _, ref := range refs {
		res := last[ref]
		fmt.Printf("%s: applied %d time(s), donation %s, campaign %s at %s (%s%%)\n",
			ref, applied[ref], res.Status, res.Campaign.ID, res.Campaign.CurrentAmount, res.Campaign.ProgressPercentage)
		if applied[ref] > 1 {
			fmt.Printf("DOUBLE CREDIT on %s\n", ref)
		}
	}
}

func sendConfirm(ref string) (int, *confirmation, error) {
	data, err := json.Marshal(map[string]string{"authorizationReference": ref})
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequest(http.MethodPost, confirmURL, bytes.NewBuffer(data))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil, nil
	}

	var res confirmation
	if err = json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("decode confirmation: %w", err)
	}
	return resp.StatusCode, &res, nil
}
