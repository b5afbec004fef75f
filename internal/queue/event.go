// Package queue defines the domain events exchanged over the message broker
// and the background consumer that turns them into an audit trail.
package queue

// StudentLinkedEvent is published when a code redemption creates a
// teacher-student relation.  It carries enough denormalized detail for
// downstream consumers (audit log, notifications) to act without querying
// the primary database.
type StudentLinkedEvent struct {
	RelationID  string `json:"relation_id"`
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Code        string `json:"code"`
	LinkedAt    string `json:"linked_at"`
}

// StudentLinkedQueue is the durable queue name for StudentLinkedEvent.
const StudentLinkedQueue = "student.linked"
