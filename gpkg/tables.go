package gpkg

// GeometryTables maps every table carrying a geom column to its OGC geometry
// type name. CreateContainer registers each of them in gpkg_contents.
var GeometryTables = map[string]string{
	"grid":                    "POLYGON",
	"user_model_boundary":     "POLYGON",
	"user_1d_domain":          "POLYGON",
	"user_centerline":         "LINESTRING",
	"user_xsections":          "LINESTRING",
	"user_levee_lines":        "LINESTRING",
	"user_levee_points":       "POINT",
	"user_streets":            "LINESTRING",
	"user_roughness":          "POLYGON",
	"user_elevation_polygons": "POLYGON",
	"user_elevation_points":   "POINT",
	"user_blocked_areas":      "POLYGON",
	"user_froude":             "POLYGON",
	"user_tolerance_areas":    "POLYGON",
	"user_shallow_n":          "POLYGON",
	"user_gutter_polygons":    "POLYGON",
	"user_rain_arf":           "POLYGON",
	"chan":                    "LINESTRING",
	"chan_elems":              "LINESTRING",
	"chan_confluences":        "POINT",
	"noexchange_chan_cells":   "POINT",
	"chan_banks":              "LINESTRING",
	"blocked_cells":           "POINT",
	"levee_data":              "LINESTRING",
	"streets":                 "MULTILINESTRING",
	"street_seg":              "MULTILINESTRING",
	"inflow_cells":            "POINT",
	"outflow_cells":           "POINT",
	"reservoirs":              "POINT",
	"rain_arf_cells":          "POINT",
	"hystruc":                 "LINESTRING",
	"fpxsec":                  "LINESTRING",
	"breach":                  "POINT",
	"gutter_cells":            "POINT",
	"fpfroude_cells":          "POINT",
	"spatialshallow_cells":    "POINT",
	"tolspatial_cells":        "POINT",
	"swmmflo":                 "POINT",
	"swmmoutf":                "POINT",
}

// CellTables lists the schematic tables that reference grid cells. They are
// emptied whenever the grid is regenerated.
var CellTables = []string{
	"chan", "chan_elems", "chan_r", "chan_v", "chan_t", "chan_n", "xsec_n_data",
	"chan_confluences", "noexchange_chan_cells", "chan_banks",
	"blocked_cells", "levee_data", "levee_failure", "levee_fragility",
	"streets", "street_seg", "street_elems",
	"inflow", "inflow_cells", "reservoirs", "outflow", "outflow_cells",
	"rain_arf_cells", "raincell_data",
	"infil_cells_green", "infil_cells_scs", "infil_cells_horton", "infil_chan_elems",
	"hystruc", "mult_cells", "mud_cells", "sed_rigid_cells", "sed_group_cells",
	"fpxsec", "fpxsec_cells", "breach", "gutter_cells",
	"fpfroude_cells", "spatialshallow_cells", "tolspatial_cells",
	"swmmflo", "swmmoutf", "wsurf", "wstime",
}
