package socket

import (
	"log"

	"github.com/Marga-Ghale/ora-project-tracker/internal/models"
	"github.com/Marga-Ghale/ora-project-tracker/internal/repository"
	"github.com/Marga-Ghale/ora-project-tracker/internal/types"
)

// Broadcaster provides high-level methods for broadcasting events
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// ============================================
// Project Broadcasting
// ============================================

func (b *Broadcaster) ProjectCreated(project *repository.Project) {
	b.toProjectRooms(project.ID, MessageProjectCreated, map[string]interface{}{
		"project": models.ToProjectResponse(project),
	})
}

func (b *Broadcaster) ProjectUpdated(project *repository.Project, fields []string) {
	b.toProjectRooms(project.ID, MessageProjectUpdated, map[string]interface{}{
		"project":       models.ToProjectResponse(project),
		"changedFields": fields,
	})
}

func (b *Broadcaster) ProjectStatusChanged(project *repository.Project, from types.ProjectStatus) {
	b.toProjectRooms(project.ID, MessageProjectStatusChanged, map[string]interface{}{
		"project":   models.ToProjectResponse(project),
		"oldStatus": string(from),
		"newStatus": string(project.Status),
	})
}

func (b *Broadcaster) ProjectDeleted(id string) {
	b.toProjectRooms(id, MessageProjectDeleted, map[string]interface{}{
		"projectId": id,
	})
}

// ProjectsOverdue announces the result of the scheduled overdue check.
func (b *Broadcaster) ProjectsOverdue(projects []*repository.Project) {
	log.Printf("[Broadcaster] 📡 %d overdue projects", len(projects))
	b.hub.SendToRooms([]string{RoomProjects}, MessageProjectsOverdue, map[string]interface{}{
		"count":    len(projects),
		"projects": models.ToProjectResponses(projects),
	})
}

func (b *Broadcaster) toProjectRooms(projectID string, msgType MessageType, payload map[string]interface{}) {
	b.hub.SendToRooms([]string{RoomProjects, ProjectRoom(projectID)}, msgType, payload)
}
