package telemetry

// SchemaSQL creates the render pass fact table. One row per recomputed frame.
const SchemaSQL = `
CREATE SEQUENCE IF NOT EXISTS render_pass_id;

CREATE TABLE IF NOT EXISTS render_passes (
    pass_id         BIGINT PRIMARY KEY DEFAULT nextval('render_pass_id'),
    seq             UBIGINT NOT NULL,
    recorded_at     TIMESTAMP NOT NULL,
    virtualized     BOOLEAN NOT NULL,
    scroll_offset   DOUBLE NOT NULL,
    viewport_extent DOUBLE NOT NULL,
    start_index     INTEGER NOT NULL,
    end_index       INTEGER NOT NULL,
    materialized    INTEGER NOT NULL,
    item_count      INTEGER NOT NULL,
    total_extent    DOUBLE NOT NULL,
    mounted         INTEGER NOT NULL,
    unmounted       INTEGER NOT NULL,
    compute_us      BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_render_passes_time ON render_passes(recorded_at);
`
