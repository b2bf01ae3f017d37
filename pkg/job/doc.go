// Package job runs background tasks on River, backed by PostgreSQL.
//
// Tasks are typed: a task has a Name and a Handle method taking a payload
// struct. Payloads are stored as JSON inside a single River job kind, so new
// tasks need no River boilerplate.
//
//	type ShipmentCreated struct{ mail *mailer.Mailer }
//
//	func (ShipmentCreated) Name() string { return "shipment.created" }
//	func (t ShipmentCreated) Handle(ctx context.Context, p Payload) error { ... }
//
//	m, err := job.NewManager(pool,
//	    job.WithTask[Payload](ShipmentCreated{mail: m}),
//	    job.WithScheduledTask(ExpireQuotes{store: s}),
//	)
//	_ = m.Start(ctx)
//	_ = m.Enqueue(ctx, "shipment.created", Payload{ShipmentID: id})
//
// Scheduled tasks use standard five-field cron expressions or the
// robfig/cron descriptors such as @hourly.
package job
