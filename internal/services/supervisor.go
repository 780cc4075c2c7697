package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domerrors "launchdeck/internal/infrastructure/errors"
	"launchdeck/internal/infrastructure/logging"
	"launchdeck/internal/platform"
	"launchdeck/internal/repository"
	"launchdeck/internal/types"
)

// instance is one live process tracked by the supervisor
type instance struct {
	id        string
	appID     string
	pid       int
	startedAt time.Time
	handle    platform.Handle
}

// LaunchSupervisor starts and stops external processes, tracks running
// state per registered application, enforces delay and duplicate-prevention
// policies, and drives auto-start at application startup.
//
// It is the single source of truth for running state: every spawned
// instance is watched until exit, so the tracking table self-heals when a
// process is closed outside the launcher.
type LaunchSupervisor struct {
	repo       repository.AppRepository
	controller platform.ProcessController
	logger     logging.Logger

	mu        sync.Mutex
	instances map[string][]*instance
	timers    map[string][]*time.Timer
	appLocks  map[string]*sync.Mutex
	closed    bool

	// delayUnit scales the per-record auto-start delay; one second in
	// production, shrunk by tests to keep them fast
	delayUnit time.Duration
}

// NewLaunchSupervisor creates a new launch supervisor
func NewLaunchSupervisor(repo repository.AppRepository, controller platform.ProcessController, logger logging.Logger) *LaunchSupervisor {
	if controller == nil {
		controller = platform.NewProcessController()
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	return &LaunchSupervisor{
		repo:       repo,
		controller: controller,
		logger:     logger,
		instances:  make(map[string][]*instance),
		timers:     make(map[string][]*time.Timer),
		appLocks:   make(map[string]*sync.Mutex),
		delayUnit:  time.Second,
	}
}

// appLock returns the per-app-id mutex, creating it on first use.
// Launch, stop and exit reaping for one id are serialized on this lock;
// operations on different ids proceed concurrently.
func (s *LaunchSupervisor) appLock(appID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.appLocks[appID]
	if !ok {
		lock = &sync.Mutex{}
		s.appLocks[appID] = lock
	}
	return lock
}

// Launch starts the registered application with the given id.
//
// When the record has PreventDuplicate set and an instance is already
// tracked as running, the call succeeds without spawning a second process:
// already-running is the documented idempotent no-op, never an error.
func (s *LaunchSupervisor) Launch(ctx context.Context, appID string) error {
	lock := s.appLock(appID)
	lock.Lock()
	defer lock.Unlock()

	app, err := s.repo.GetByID(ctx, appID)
	if err != nil {
		return err
	}

	if app.PreventDuplicate && s.instanceCount(appID) > 0 {
		s.logger.Info("Duplicate launch suppressed", "app_id", appID, "name", app.Name)
		return nil
	}

	return s.spawn(appID, app.Path, app.Arguments)
}

// LaunchCommand handles the frontend launch call, which carries an explicit
// path and argument string. Registered ids launch from their stored record
// (including duplicate prevention); unknown ids are ad-hoc system-tool
// launches tracked under the caller-provided id.
func (s *LaunchSupervisor) LaunchCommand(ctx context.Context, appID, path, arguments string) error {
	app, err := s.repo.GetByID(ctx, appID)
	if err != nil {
		if domerrors.IsNotFound(err) {
			lock := s.appLock(appID)
			lock.Lock()
			defer lock.Unlock()
			return s.spawn(appID, path, arguments)
		}
		return err
	}

	lock := s.appLock(appID)
	lock.Lock()
	defer lock.Unlock()

	if app.PreventDuplicate && s.instanceCount(appID) > 0 {
		s.logger.Info("Duplicate launch suppressed", "app_id", appID, "name", app.Name)
		return nil
	}

	return s.spawn(appID, app.Path, app.Arguments)
}

// spawn starts the process and registers the new instance.
// Callers must hold the per-app lock.
func (s *LaunchSupervisor) spawn(appID, path, arguments string) error {
	handle, err := s.controller.Start(path, arguments)
	if err != nil {
		s.logger.Error("Failed to launch application", "app_id", appID, "path", path, "error", err)
		return domerrors.HandleLaunchError("Launch", path, err)
	}

	inst := &instance{
		id:        uuid.NewString(),
		appID:     appID,
		pid:       handle.PID(),
		startedAt: time.Now(),
		handle:    handle,
	}

	s.mu.Lock()
	s.instances[appID] = append(s.instances[appID], inst)
	s.mu.Unlock()

	go s.reap(inst)

	s.logger.Info("Application launched", "app_id", appID, "pid", inst.pid, "instance_id", inst.id)
	return nil
}

// reap blocks until the process exits, then drops its tracking entry.
// This is the exit detection path: externally closed or crashed processes
// disappear from the running table without a manual stop call.
func (s *LaunchSupervisor) reap(inst *instance) {
	if err := inst.handle.Wait(); err != nil {
		s.logger.Warn("Process wait returned error", "app_id", inst.appID, "pid", inst.pid, "error", err)
	}

	lock := s.appLock(inst.appID)
	lock.Lock()
	defer lock.Unlock()

	if s.removeInstance(inst.appID, inst.id) {
		s.logger.Info("Process exited", "app_id", inst.appID, "pid", inst.pid, "instance_id", inst.id)
	}
}

// Stop terminates every tracked instance of the application.
//
// An unknown id is NotFound. A known id with no live instance returns the
// soft NotRunning error: the command surface reports it to the caller but
// nothing is in a broken state afterwards.
func (s *LaunchSupervisor) Stop(ctx context.Context, appID string) error {
	lock := s.appLock(appID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.repo.GetByID(ctx, appID); err != nil {
		return err
	}

	s.mu.Lock()
	tracked := append([]*instance(nil), s.instances[appID]...)
	s.mu.Unlock()

	if len(tracked) == 0 {
		return domerrors.HandleNotRunningError("Stop", appID)
	}

	for _, inst := range tracked {
		s.terminateInstance(inst)
	}
	return nil
}

// StopInstance terminates a single tracked instance of the application
func (s *LaunchSupervisor) StopInstance(ctx context.Context, appID, instanceID string) error {
	lock := s.appLock(appID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	var target *instance
	for _, inst := range s.instances[appID] {
		if inst.id == instanceID {
			target = inst
			break
		}
	}
	s.mu.Unlock()

	if target == nil {
		return domerrors.HandleNotRunningError("StopInstance", appID)
	}

	s.terminateInstance(target)
	return nil
}

// terminateInstance terminates the process and drops it from tracking.
// The reap goroutine observing the exit finds the entry already removed.
// Callers must hold the per-app lock.
func (s *LaunchSupervisor) terminateInstance(inst *instance) {
	if err := inst.handle.Terminate(); err != nil {
		s.logger.Warn("Failed to terminate process", "app_id", inst.appID, "pid", inst.pid, "error", err)
	}
	if s.removeInstance(inst.appID, inst.id) {
		s.logger.Info("Application stopped", "app_id", inst.appID, "pid", inst.pid, "instance_id", inst.id)
	}
}

// removeInstance drops one tracking entry; returns false when another path
// (stop vs reap) already removed it
func (s *LaunchSupervisor) removeInstance(appID, instanceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracked := s.instances[appID]
	for i, inst := range tracked {
		if inst.id == instanceID {
			s.instances[appID] = append(tracked[:i], tracked[i+1:]...)
			if len(s.instances[appID]) == 0 {
				delete(s.instances, appID)
			}
			return true
		}
	}
	return false
}

// AutoStartAll launches every enabled record with auto-start set. Zero-delay
// apps launch immediately, each on its own goroutine; delayed apps are
// scheduled with timers so no record ever blocks another. Scheduled launches
// follow the same duplicate-prevention rule as manual ones.
//
// Invoked once at application startup.
func (s *LaunchSupervisor) AutoStartAll(ctx context.Context) error {
	apps, err := s.repo.GetAll(ctx)
	if err != nil {
		return err
	}

	for i := range apps {
		app := apps[i]
		if !app.Enabled || !app.AutoStart {
			continue
		}

		if app.Delay <= 0 {
			go func() {
				if err := s.Launch(context.Background(), app.ID); err != nil {
					s.logger.Error("Auto-start launch failed", "app_id", app.ID, "name", app.Name, "error", err)
				}
			}()
			continue
		}

		s.scheduleLaunch(app)
	}

	return nil
}

// scheduleLaunch arms a cancellable timer for a delayed auto-start launch
func (s *LaunchSupervisor) scheduleLaunch(app types.RegisteredApp) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(time.Duration(app.Delay)*s.delayUnit, func() {
		s.forgetTimer(app.ID, timer)
		if err := s.Launch(context.Background(), app.ID); err != nil {
			s.logger.Error("Auto-start launch failed", "app_id", app.ID, "name", app.Name, "error", err)
		}
	})
	s.timers[app.ID] = append(s.timers[app.ID], timer)

	s.logger.Info("Auto-start scheduled", "app_id", app.ID, "name", app.Name, "delay_seconds", app.Delay)
}

// forgetTimer drops a fired timer from the cancellation table
func (s *LaunchSupervisor) forgetTimer(appID string, timer *time.Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timers := s.timers[appID]
	for i, t := range timers {
		if t == timer {
			s.timers[appID] = append(timers[:i], timers[i+1:]...)
			break
		}
	}
	if len(s.timers[appID]) == 0 {
		delete(s.timers, appID)
	}
}

// DropTracking cancels pending auto-start timers and forgets live instances
// for a deleted application. The processes themselves keep running: deleting
// a launcher entry must not destroy the user's work.
func (s *LaunchSupervisor) DropTracking(appID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, timer := range s.timers[appID] {
		timer.Stop()
	}
	delete(s.timers, appID)

	if n := len(s.instances[appID]); n > 0 {
		s.logger.Info("Dropped run-state tracking", "app_id", appID, "instances", n)
	}
	delete(s.instances, appID)
}

// Running reports whether at least one instance of the application is tracked
func (s *LaunchSupervisor) Running(appID string) bool {
	return s.instanceCount(appID) > 0
}

// instanceCount returns the number of tracked instances for an app id
func (s *LaunchSupervisor) instanceCount(appID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.instances[appID])
}

// Instances returns the tracked running instances for an app id
func (s *LaunchSupervisor) Instances(appID string) []types.RunningInstance {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracked := s.instances[appID]
	result := make([]types.RunningInstance, 0, len(tracked))
	for _, inst := range tracked {
		result = append(result, types.RunningInstance{
			InstanceID: inst.id,
			AppID:      inst.appID,
			PID:        inst.pid,
			StartedAt:  inst.startedAt,
		})
	}
	return result
}

// Statuses decorates registry records with live running state. A cheap
// liveness probe backs up the exit watchers, so a stale entry whose process
// vanished is pruned on the spot.
func (s *LaunchSupervisor) Statuses(apps []types.RegisteredApp) []types.RegisteredAppStatus {
	statuses := make([]types.RegisteredAppStatus, 0, len(apps))
	for i := range apps {
		s.pruneDead(apps[i].ID)
		count := s.instanceCount(apps[i].ID)
		statuses = append(statuses, types.RegisteredAppStatus{
			RegisteredApp: apps[i],
			Running:       count > 0,
			Instances:     count,
		})
	}
	return statuses
}

// pruneDead drops tracked instances whose pid no longer exists
func (s *LaunchSupervisor) pruneDead(appID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracked := s.instances[appID]
	if len(tracked) == 0 {
		return
	}

	alive := tracked[:0]
	for _, inst := range tracked {
		if s.controller.IsAlive(inst.pid) {
			alive = append(alive, inst)
		} else {
			s.logger.Info("Pruned dead instance", "app_id", appID, "pid", inst.pid, "instance_id", inst.id)
		}
	}

	if len(alive) == 0 {
		delete(s.instances, appID)
	} else {
		s.instances[appID] = alive
	}
}

// Shutdown cancels pending auto-start timers. Live processes are left
// running: closing the launcher must not close the user's applications.
func (s *LaunchSupervisor) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for appID, timers := range s.timers {
		for _, timer := range timers {
			timer.Stop()
		}
		delete(s.timers, appID)
	}

	s.logger.Info("Launch supervisor shut down")
}
