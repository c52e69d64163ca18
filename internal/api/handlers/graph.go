package handlers

import (
	"fleet-trip-service/internal/api/dto"
	"fleet-trip-service/internal/domain"
	"fleet-trip-service/internal/services"
	"net/http"
)

type GraphHandler struct {
	Graph *services.GraphService
}

func (h *GraphHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.Graph.ListNodes(r.Context())
	if err != nil {
		writeServiceError(w, r, "graph.list_nodes", err)
		return
	}

	res := make([]dto.NodeResponse, 0, len(nodes))
	for _, n := range nodes {
		res = append(res, nodeResponse(n))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *GraphHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateNodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	node, err := h.Graph.CreateNode(r.Context(), req.Name, req.Lat, req.Lon)
	if err != nil {
		writeServiceError(w, r, "graph.create_node", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, nodeResponse(*node))
}

func (h *GraphHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
	edges, err := h.Graph.ListEdges(r.Context())
	if err != nil {
		writeServiceError(w, r, "graph.list_edges", err)
		return
	}

	res := make([]dto.EdgeResponse, 0, len(edges))
	for _, e := range edges {
		res = append(res, edgeResponse(e))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *GraphHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEdgeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	bidirectional := true
	if req.IsBidirectional != nil {
		bidirectional = *req.IsBidirectional
	}

	e, err := h.Graph.CreateEdge(r.Context(), req.FromNodeID, req.ToNodeID, req.Weight, bidirectional)
	if err != nil {
		writeServiceError(w, r, "graph.create_edge", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, edgeResponse(*e))
}

func nodeResponse(n domain.GraphNode) dto.NodeResponse {
	res := dto.NodeResponse{ID: n.ID, Name: n.Name}
	if n.Coords != nil {
		lat, lon := n.Coords.Lat, n.Coords.Lon
		res.Lat, res.Lon = &lat, &lon
	}
	return res
}

func edgeResponse(e domain.GraphEdge) dto.EdgeResponse {
	return dto.EdgeResponse{
		ID:              e.ID,
		FromNodeID:      e.FromNodeID,
		ToNodeID:        e.ToNodeID,
		Weight:          e.Weight,
		IsBidirectional: e.IsBidirectional,
	}
}
