package stats

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"
)

// Statistic tracks response counters for the server plus the outcomes
// of media authorization decisions (allow, or the deny reason).
type Statistic struct {
	mutex           sync.RWMutex
	shutdown        chan struct{}
	Hostname        string
	StartTime       time.Time
	ProcessID       int
	ResponseCounts  map[string]int
	TotalRespCounts map[string]int
	TotalRespTime   time.Duration
	TotalRespSize   int64
	DecisionCounts  map[string]int
}

func NewStatistic() *Statistic {
	hostname, _ := os.Hostname()

	statistic := &Statistic{
		shutdown:        make(chan struct{}, 1),
		StartTime:       time.Now(),
		ProcessID:       os.Getpid(),
		ResponseCounts:  make(map[string]int),
		TotalRespCounts: make(map[string]int),
		DecisionCounts:  make(map[string]int),
		Hostname:        hostname,
	}

	go statistic.resetResponseCountsPeriodically()

	return statistic
}

func (stat *Statistic) Close() {
	close(stat.shutdown)
}

// ResponseCounts holds a one-second window; the periodic reset keeps it
// that way.
func (stat *Statistic) resetResponseCountsPeriodically() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stat.shutdown:
			return
		case <-ticker.C:
			stat.resetResponseCounts()
		}
	}
}

func (stat *Statistic) resetResponseCounts() {
	stat.mutex.Lock()
	defer stat.mutex.Unlock()
	stat.ResponseCounts = make(map[string]int)
}

func (stat *Statistic) WrapHandler(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime, recorder := stat.StartRecording(w)

		handler.ServeHTTP(recorder, r)

		stat.EndRecording(startTime, recorder)
	})
}

func (stat *Statistic) StartRecording(writer http.ResponseWriter) (time.Time, ResponseWriter) {
	return time.Now(), NewResponseRecorder(writer, http.StatusOK)
}

func (stat *Statistic) EndRecording(startTime time.Time, recorder ResponseWriter) {
	duration := time.Since(startTime)

	stat.mutex.Lock()
	defer stat.mutex.Unlock()

	if status := recorder.Status(); status != 0 {
		statusCode := fmt.Sprintf("%d", status)
		stat.ResponseCounts[statusCode]++
		stat.TotalRespCounts[statusCode]++
		stat.TotalRespTime += duration
		stat.TotalRespSize += int64(recorder.Size())
	}
}

// RecordDecision counts one media authorization outcome: "allow" or the
// deny reason reported to the client.
func (stat *Statistic) RecordDecision(outcome string) {
	stat.mutex.Lock()
	defer stat.mutex.Unlock()
	stat.DecisionCounts[outcome]++
}

type StatisticData struct {
	ProcessID            int            `json:"pid"`
	Hostname             string         `json:"hostname"`
	UpTime               string         `json:"uptime"`
	UpTimeSec            float64        `json:"uptime_sec"`
	Time                 string         `json:"time"`
	TimeUnix             int64          `json:"unixtime"`
	StatusCodeCount      map[string]int `json:"status_code_count"`
	TotalStatusCodeCount map[string]int `json:"total_status_code_count"`
	ResponseCount        int            `json:"count"`
	TotalResponseCount   int            `json:"total_count"`
	TotalResponseTime    string         `json:"total_response_time"`
	TotalResponseTimeSec float64        `json:"total_response_time_sec"`
	TotalResponseSize    int64          `json:"total_response_size"`
	AverageResponseSize  int64          `json:"average_response_size"`
	AverageResponseTime  string         `json:"average_response_time"`
	DecisionCount        map[string]int `json:"decision_count"`
}

func (stat *Statistic) GatherData() *StatisticData {
	stat.mutex.RLock()
	defer stat.mutex.RUnlock()

	responseCounts := make(map[string]int, len(stat.ResponseCounts))
	totalResponseCounts := make(map[string]int, len(stat.TotalRespCounts))
	decisionCounts := make(map[string]int, len(stat.DecisionCounts))

	currentTime := time.Now()
	uptime := currentTime.Sub(stat.StartTime)

	responseCount := copyCounts(stat.ResponseCounts, responseCounts)
	totalCount := copyCounts(stat.TotalRespCounts, totalResponseCounts)
	copyCounts(stat.DecisionCounts, decisionCounts)

	avgResponseTime, avgResponseSize := stat.calculateAverages(totalCount)

	return &StatisticData{
		ProcessID:            stat.ProcessID,
		Hostname:             stat.Hostname,
		UpTime:               uptime.String(),
		UpTimeSec:            uptime.Seconds(),
		Time:                 currentTime.String(),
		TimeUnix:             currentTime.Unix(),
		StatusCodeCount:      responseCounts,
		TotalStatusCodeCount: totalResponseCounts,
		ResponseCount:        responseCount,
		TotalResponseCount:   totalCount,
		TotalResponseTime:    stat.TotalRespTime.String(),
		TotalResponseTimeSec: stat.TotalRespTime.Seconds(),
		TotalResponseSize:    stat.TotalRespSize,
		AverageResponseSize:  avgResponseSize,
		AverageResponseTime:  avgResponseTime.String(),
		DecisionCount:        decisionCounts,
	}
}

func (stat *Statistic) calculateAverages(count int) (time.Duration, int64) {
	if count == 0 {
		return 0, 0
	}
	return stat.TotalRespTime / time.Duration(count), stat.TotalRespSize / int64(count)
}

func copyCounts(src, dest map[string]int) (sum int) {
	for key, count := range src {
		dest[key] = count
		sum += count
	}
	return sum
}
