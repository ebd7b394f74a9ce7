// Пакет для управления cron-задачами.
//
// Основные возможности:
//   - Системные задачи из реестра (сборка осиротевших комментариев).
//   - Динамические задачи автообновления блоков, добавляются и удаляются по имени.
//   - Запуск и остановка cron-диспетчера.
package cronmanager

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type CronJobFunc func()

type Job struct {
	Func     CronJobFunc
	Schedule string
}

type JobRegistry map[string]Job

type CronManager struct {
	dispatcher  *cron.Cron
	jobs        map[string]cron.EntryID
	mu          sync.Mutex
	jobRegistry JobRegistry
}

// NewCronManager создает новый менеджер для планирования задач.
// Параметры:
//   - jobRegistry: реестр системных задач, может быть nil
//
// Возвращает:
//   - *CronManager: созданный менеджер для планирования задач
func NewCronManager(jobRegistry JobRegistry) *CronManager {
	logger := slogLogger{}
	dispatcher := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	if jobRegistry == nil {
		jobRegistry = make(JobRegistry)
	}

	return &CronManager{
		dispatcher:  dispatcher,
		jobs:        make(map[string]cron.EntryID),
		jobRegistry: jobRegistry,
	}
}

// LoadJobs (пере)загружает системные задачи из реестра.
// Динамические задачи не затрагиваются.
func (cm *CronManager) LoadJobs() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for name, job := range cm.jobRegistry {
		if entryID, exists := cm.jobs[name]; exists {
			cm.dispatcher.Remove(entryID)
			delete(cm.jobs, name)
		}
		if err := cm.addJob(name, job); err != nil {
			slog.Error("Error adding job", "name", name, "err", err)
		}
	}

	return nil
}

// AddJob добавляет или заменяет задачу name.
func (cm *CronManager) AddJob(name, schedule string, fn CronJobFunc) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if entryID, exists := cm.jobs[name]; exists {
		cm.dispatcher.Remove(entryID)
		delete(cm.jobs, name)
	}
	return cm.addJob(name, Job{Func: fn, Schedule: schedule})
}

func (cm *CronManager) addJob(name string, job Job) error {
	if job.Func == nil {
		return fmt.Errorf("No job function registered for name: %s", name)
	}

	id, err := cm.dispatcher.AddFunc(job.Schedule, job.Func)
	if err != nil {
		slog.Error("Failed to add job", "name", name, "err", err)
		return fmt.Errorf("Failed to add job '%s': %v", name, err)
	}
	cm.jobs[name] = id
	return nil
}

// RemoveJob удаляет задачу по имени.
func (cm *CronManager) RemoveJob(name string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if entryID, exists := cm.jobs[name]; exists {
		cm.dispatcher.Remove(entryID)
		delete(cm.jobs, name)
	}
}

func (cm *CronManager) HasJob(name string) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	_, ok := cm.jobs[name]
	return ok
}

// Len возвращает число запланированных задач.
func (cm *CronManager) Len() int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return len(cm.jobs)
}

// Next возвращает время следующего запуска задачи.
func (cm *CronManager) Next(name string) (time.Time, bool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	entryID, ok := cm.jobs[name]
	if !ok {
		return time.Time{}, false
	}
	entry := cm.dispatcher.Entry(entryID)
	return entry.Next, entry.Valid()
}

func (cm *CronManager) Start() {
	cm.dispatcher.Start()
}

// Stop останавливает диспетчер и ждет завершения выполняющихся задач.
func (cm *CronManager) Stop() {
	ctx := cm.dispatcher.Stop()
	<-ctx.Done()
}

// Every возвращает расписание с фиксированным интервалом.
func Every(d time.Duration) string {
	return "@every " + d.String()
}

type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
